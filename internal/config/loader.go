package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "docreview.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "DOCREVIEW_PORT")
	setString(&cfg.Server.CORSOrigin, "DOCREVIEW_CORS_ORIGIN")

	setString(&cfg.Store.Driver, "DOCREVIEW_STORE_DRIVER")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "DOCREVIEW_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "DOCREVIEW_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "DOCREVIEW_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "DOCREVIEW_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "DOCREVIEW_PG_HEALTH_CHECK")

	setString(&cfg.Queue.Driver, "DOCREVIEW_QUEUE_DRIVER")
	setInt(&cfg.Queue.Capacity, "DOCREVIEW_QUEUE_CAPACITY")
	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setFloat64(&cfg.OpenAI.Temperature, "OPENAI_TEMPERATURE")
	setInt(&cfg.OpenAI.MaxTokens, "OPENAI_MAX_TOKENS")
	setDuration(&cfg.OpenAI.Timeout, "OPENAI_TIMEOUT")

	setInt(&cfg.Pipeline.Workers, "DOCREVIEW_WORKERS")
	setDuration(&cfg.Pipeline.TaskTimeout, "DOCREVIEW_TASK_TIMEOUT")
	setDuration(&cfg.Pipeline.ReviewerCost, "DOCREVIEW_REVIEWER_COST")
	setInt(&cfg.Pipeline.QuickDocChars, "DOCREVIEW_QUICK_DOC_CHARS")
	setInt(&cfg.Pipeline.DeepDocChars, "DOCREVIEW_DEEP_DOC_CHARS")
	setInt(&cfg.Pipeline.FindingBonusOver, "DOCREVIEW_FINDING_BONUS_OVER")

	setInt64(&cfg.Cache.MaxSizeMB, "DOCREVIEW_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "DOCREVIEW_CACHE_TTL")

	setString(&cfg.Logging.Level, "DOCREVIEW_LOG_LEVEL")
	setString(&cfg.Logging.Service, "DOCREVIEW_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "DOCREVIEW_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "DOCREVIEW_BREAKER_TIMEOUT")

	setBool(&cfg.Telemetry.Enabled, "DOCREVIEW_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	switch cfg.Store.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("store.driver must be memory or postgres, got %q", cfg.Store.Driver)
	}
	if cfg.Store.Driver == "postgres" && cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required with store.driver=postgres")
	}
	switch cfg.Queue.Driver {
	case "memory", "nats":
	default:
		return fmt.Errorf("queue.driver must be memory or nats, got %q", cfg.Queue.Driver)
	}
	if cfg.Queue.Driver == "nats" && cfg.NATS.URL == "" {
		return errors.New("nats.url is required with queue.driver=nats")
	}
	if cfg.Queue.Capacity < 1 {
		return errors.New("queue.capacity must be >= 1")
	}
	if cfg.Pipeline.Workers < 1 {
		return errors.New("pipeline.workers must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
