package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

type Config struct {
	LogMode string `mapstructure:"log_mode"`

	HTTP      HTTPConfig      `mapstructure:"http"`
	Auth      AuthConfig      `mapstructure:"auth"`
	DB        DBConfig        `mapstructure:"db"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Media     MediaConfig     `mapstructure:"media"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Invites   InvitesConfig   `mapstructure:"invites"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// CORSOrigins is a comma separated allow-list; empty allows the local dev origins.
	CORSOrigins string `mapstructure:"cors_origins"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	// ExposeOnAPI also mounts /metrics on the API listener.
	ExposeOnAPI bool `mapstructure:"expose_on_api"`
}

type MediaConfig struct {
	// Provider is gcs, gcs_emulator, cloudinary or disabled.
	Provider     string `mapstructure:"provider"`
	Bucket       string `mapstructure:"bucket"`
	CDNDomain    string `mapstructure:"cdn_domain"`
	EmulatorHost string `mapstructure:"emulator_host"`
	Moderation   bool   `mapstructure:"moderation"`
	MaxBytes     int64  `mapstructure:"max_bytes"`
	MaxDimension int    `mapstructure:"max_dimension"`

	// PublicBaseURL overrides the host in returned image URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type RegistryConfig struct {
	PublicURL string `mapstructure:"public_url"`
	Currency  string `mapstructure:"currency"`
}

type InvitesConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_mode", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("http.cors_origins", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.leeway", 30*time.Second)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "vowbridge")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("db.auto_migrate", true)

	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.expose_on_api", false)

	v.SetDefault("media.provider", "disabled")
	v.SetDefault("media.bucket", "")
	v.SetDefault("media.cdn_domain", "")
	v.SetDefault("media.emulator_host", "")
	v.SetDefault("media.public_base_url", "")
	v.SetDefault("media.moderation", false)
	v.SetDefault("media.max_bytes", 5<<20)
	v.SetDefault("media.max_dimension", 1600)

	v.SetDefault("registry.public_url", "http://localhost:5173")
	v.SetDefault("registry.currency", "usd")

	v.SetDefault("invites.concurrency", 4)

	v.SetDefault("telemetry.service_name", "vowbridge-backend")
	v.SetDefault("telemetry.environment", "development")
	v.SetDefault("telemetry.version", "dev")
}

// LoadConfig reads .env (if present), then config.yaml from the working directory or
// CONFIG_FILE, then environment variables. Nested keys map to upper snake case env vars,
// e.g. http.addr is HTTP_ADDR.
func LoadConfig(log *logger.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("config_file")); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else if log != nil {
		log.Info("config file loaded", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Media.Provider = strings.ToLower(strings.TrimSpace(c.Media.Provider))
	c.Registry.PublicURL = strings.TrimRight(strings.TrimSpace(c.Registry.PublicURL), "/")
	c.Registry.Currency = strings.ToLower(strings.TrimSpace(c.Registry.Currency))
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if c.Media.MaxBytes <= 0 {
		return fmt.Errorf("MEDIA_MAX_BYTES must be positive, got %d", c.Media.MaxBytes)
	}
	return nil
}

// CORSOrigins splits the configured allow-list.
func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.HTTP.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
