package observability

import "testing"

func TestLoadOtelEnvDefaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_SAMPLER_RATIO", "")
	oe, err := loadOtelEnv()
	if err != nil {
		t.Fatalf("loadOtelEnv: %v", err)
	}
	if oe.Enabled || oe.SampleRatio != 0.1 || oe.Endpoint != "" {
		t.Fatalf("unexpected defaults: %+v", oe)
	}
}

func TestLoadOtelEnvParsesHeadersAndClampsRatio(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", " collector:4318 ")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc,x-team=registry")
	oe, err := loadOtelEnv()
	if err != nil {
		t.Fatalf("loadOtelEnv: %v", err)
	}
	if !oe.Enabled || oe.SampleRatio != 1 || oe.Endpoint != "collector:4318" {
		t.Fatalf("unexpected config: %+v", oe)
	}
	if oe.Headers["x-api-key"] != "abc" || oe.Headers["x-team"] != "registry" {
		t.Fatalf("unexpected headers: %#v", oe.Headers)
	}
}

func TestLoadOtelEnvRejectsBadRatio(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "lots")
	if _, err := loadOtelEnv(); err == nil {
		t.Fatalf("expected parse error")
	}
}
