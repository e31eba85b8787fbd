package observability

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

// OtelConfig names the service in exported spans. Exporter settings come from the
// standard OTEL_* variables.
type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

type otelEnv struct {
	Enabled     bool              `env:"OTEL_ENABLED" envDefault:"false"`
	SampleRatio float64           `env:"OTEL_SAMPLER_RATIO" envDefault:"0.1"`
	Endpoint    string            `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     map[string]string `env:"OTEL_EXPORTER_OTLP_HEADERS" envSeparator:"," envKeyValSeparator:"="`
	Insecure    bool              `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
}

func loadOtelEnv() (otelEnv, error) {
	cfg, err := env.ParseAs[otelEnv]()
	if err != nil {
		return otelEnv{}, err
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	switch {
	case cfg.SampleRatio < 0:
		cfg.SampleRatio = 0
	case cfg.SampleRatio > 1:
		cfg.SampleRatio = 1
	}
	return cfg, nil
}

var (
	otelOnce     sync.Once
	otelShutdown = func(context.Context) error { return nil }
)

// InitOTel installs the global tracer provider once. The returned func flushes spans and
// is safe to call when tracing is off.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	otelOnce.Do(func() {
		if log == nil {
			log = logger.Nop()
		}
		oe, err := loadOtelEnv()
		if err != nil {
			log.Warn("otel env invalid, tracing disabled", "error", err)
			return
		}
		if !oe.Enabled {
			return
		}
		serviceName := strings.TrimSpace(cfg.ServiceName)
		if serviceName == "" {
			serviceName = "vowbridge-api"
		}
		res, err := resource.New(ctx, resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		))
		if err != nil {
			log.Warn("otel resource init failed (continuing)", "error", err)
		}

		opts := []sdktrace.TracerProviderOption{
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(oe.SampleRatio))),
			sdktrace.WithResource(res),
		}
		exporter, err := buildTraceExporter(ctx, oe)
		switch {
		case err != nil:
			log.Warn("otel exporter init failed (continuing)", "error", err)
		case oe.Endpoint == "":
			log.Warn("otel using stdout exporter (no OTLP endpoint configured)")
		}
		if exporter != nil {
			opts = append(opts, sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)))
		}
		tp := sdktrace.NewTracerProvider(opts...)
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized", "service", serviceName, "endpoint", oe.Endpoint, "ratio", oe.SampleRatio)
	})
	return otelShutdown
}

func buildTraceExporter(ctx context.Context, oe otelEnv) (sdktrace.SpanExporter, error) {
	if oe.Endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(oe.Endpoint)}
	if oe.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(oe.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(oe.Headers))
	}
	return otlptracehttp.New(ctx, opts...)
}
