// Package config provides hierarchical configuration loading for the
// foreman service. Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the foreman service.
type Config struct {
	Server     Server     `yaml:"server"`
	Registry   Registry   `yaml:"registry"`
	Delegation Delegation `yaml:"delegation"`
	Invoker    Invoker    `yaml:"invoker"`
	NATS       NATS       `yaml:"nats"`
	Postgres   Postgres   `yaml:"postgres"`
	Logging    Logging    `yaml:"logging"`
	Breaker    Breaker    `yaml:"breaker"`
	Otel       Otel       `yaml:"otel"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Registry holds capability discovery configuration.
type Registry struct {
	CardDir        string        `yaml:"card_dir"`        // directory of descriptor JSON files
	SpecialistURLs []string      `yaml:"specialist_urls"` // remote base URLs serving well-known cards
	Strict         bool          `yaml:"strict"`          // abort discovery on any malformed descriptor
	ReloadInterval time.Duration `yaml:"reload_interval"` // 0 disables periodic reload
	CacheTTL       time.Duration `yaml:"cache_ttl"`       // TTL for remote card cache entries
	CacheMaxBytes  int64         `yaml:"cache_max_bytes"` // remote card cache budget
}

// Delegation holds façade configuration.
type Delegation struct {
	// Identity is the foreman's own identity string, stamped on every
	// task it creates.
	Identity    string `yaml:"identity"`
	MaxParallel int    `yaml:"max_parallel"` // batch fan-out worker pool size
}

// Invoker selects and tunes the invocation strategy.
type Invoker struct {
	Mode    string        `yaml:"mode"`    // "nats" | "local"
	Timeout time.Duration `yaml:"timeout"` // per-invocation deadline
}

// NATS holds NATS connection configuration for remote invocation.
type NATS struct {
	URL string `yaml:"url"`
}

// Postgres holds PostgreSQL connection configuration for the audit trail.
// An empty DSN disables audit persistence.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level       string `yaml:"level"`
	Service     string `yaml:"service"`
	Async       bool   `yaml:"async"`
	AsyncBuffer int    `yaml:"async_buffer"`
}

// Breaker holds circuit breaker configuration for remote invocation.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Otel holds OpenTelemetry export configuration.
type Otel struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Registry: Registry{
			CardDir:        "cards",
			ReloadInterval: 0,
			CacheTTL:       5 * time.Minute,
			CacheMaxBytes:  16 << 20,
		},
		Delegation: Delegation{
			Identity:    "spiffe://intent.solutions/agent/foreman/dev",
			MaxParallel: 4,
		},
		Invoker: Invoker{
			Mode:    "nats",
			Timeout: 60 * time.Second,
		},
		NATS: NATS{
			URL: "nats://localhost:4222",
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		Logging: Logging{
			Level:       "info",
			Service:     "foreman",
			AsyncBuffer: 1024,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Otel: Otel{
			Endpoint: "localhost:4317",
		},
	}
}
