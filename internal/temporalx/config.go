package temporalx

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Address   string `env:"TEMPORAL_ADDRESS"`
	Namespace string `env:"TEMPORAL_NAMESPACE" envDefault:"vowbridge"`
	TaskQueue string `env:"TEMPORAL_TASK_QUEUE" envDefault:"vowbridge"`

	ClientCertPath string `env:"TEMPORAL_CLIENT_CERT_PATH"`
	ClientKeyPath  string `env:"TEMPORAL_CLIENT_KEY_PATH"`
	ClientCAPath   string `env:"TEMPORAL_CLIENT_CA_PATH"`

	DialTimeout    time.Duration `env:"TEMPORAL_DIAL_TIMEOUT" envDefault:"5s"`
	DialMaxWait    time.Duration `env:"TEMPORAL_DIAL_MAX_WAIT" envDefault:"60s"`
	DialBackoff    time.Duration `env:"TEMPORAL_DIAL_BACKOFF" envDefault:"250ms"`
	DialBackoffMax time.Duration `env:"TEMPORAL_DIAL_BACKOFF_MAX" envDefault:"5s"`

	AutoRegisterNamespace  bool          `env:"TEMPORAL_AUTO_REGISTER_NAMESPACE" envDefault:"false"`
	NamespaceEnsureTimeout time.Duration `env:"TEMPORAL_NAMESPACE_ENSURE_TIMEOUT" envDefault:"10s"`
	NamespaceRetentionDays int           `env:"TEMPORAL_NAMESPACE_RETENTION_DAYS" envDefault:"7"`

	WorkerConcurrency  int           `env:"TEMPORAL_WORKER_CONCURRENCY" envDefault:"4"`
	WorkerStartMaxWait time.Duration `env:"TEMPORAL_WORKER_START_MAX_WAIT" envDefault:"60s"`
	SettlementWindow   time.Duration `env:"CONTRIBUTION_PAYMENT_WINDOW" envDefault:"30m"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse temporal env: %w", err)
	}
	cfg.Address = strings.TrimSpace(cfg.Address)
	cfg.Namespace = stringsOr(strings.TrimSpace(cfg.Namespace), "vowbridge")
	cfg.TaskQueue = stringsOr(strings.TrimSpace(cfg.TaskQueue), "vowbridge")
	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}
	if cfg.NamespaceRetentionDays < 1 || cfg.NamespaceRetentionDays > 365 {
		cfg.NamespaceRetentionDays = 7
	}
	if cfg.SettlementWindow <= 0 {
		cfg.SettlementWindow = 30 * time.Minute
	}
	return cfg, nil
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) tlsEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func stringsOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
