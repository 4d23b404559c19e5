package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "foreman.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
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
	setString(&cfg.Server.Port, "FOREMAN_PORT")
	setString(&cfg.Server.CORSOrigin, "FOREMAN_CORS_ORIGIN")
	setString(&cfg.Registry.CardDir, "FOREMAN_CARD_DIR")
	setStrings(&cfg.Registry.SpecialistURLs, "FOREMAN_SPECIALIST_URLS")
	setBool(&cfg.Registry.Strict, "FOREMAN_REGISTRY_STRICT")
	setDuration(&cfg.Registry.ReloadInterval, "FOREMAN_REGISTRY_RELOAD_INTERVAL")
	setDuration(&cfg.Registry.CacheTTL, "FOREMAN_CARD_CACHE_TTL")
	setInt64(&cfg.Registry.CacheMaxBytes, "FOREMAN_CARD_CACHE_MAX_BYTES")
	setString(&cfg.Delegation.Identity, "FOREMAN_IDENTITY")
	setInt(&cfg.Delegation.MaxParallel, "FOREMAN_MAX_PARALLEL")
	setString(&cfg.Invoker.Mode, "FOREMAN_INVOKER_MODE")
	setDuration(&cfg.Invoker.Timeout, "FOREMAN_INVOKER_TIMEOUT")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "FOREMAN_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "FOREMAN_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "FOREMAN_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "FOREMAN_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "FOREMAN_PG_HEALTH_CHECK")
	setString(&cfg.Logging.Level, "FOREMAN_LOG_LEVEL")
	setString(&cfg.Logging.Service, "FOREMAN_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "FOREMAN_LOG_ASYNC")
	setInt(&cfg.Logging.AsyncBuffer, "FOREMAN_LOG_ASYNC_BUFFER")
	setInt(&cfg.Breaker.MaxFailures, "FOREMAN_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "FOREMAN_BREAKER_TIMEOUT")
	setBool(&cfg.Otel.Enabled, "FOREMAN_OTEL_ENABLED")
	setString(&cfg.Otel.Endpoint, "FOREMAN_OTEL_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Delegation.Identity == "" {
		return errors.New("delegation.identity is required")
	}
	if cfg.Delegation.MaxParallel < 1 {
		return errors.New("delegation.max_parallel must be >= 1")
	}
	switch cfg.Invoker.Mode {
	case "nats", "local":
	default:
		return fmt.Errorf("invoker.mode must be \"nats\" or \"local\", got %q", cfg.Invoker.Mode)
	}
	if cfg.Invoker.Mode == "nats" && cfg.NATS.URL == "" {
		return errors.New("nats.url is required for the nats invoker")
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

// setStrings parses a comma-separated list.
func setStrings(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
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
