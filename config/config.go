// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package config

import (
	"slices"
	"time"

	"github.com/kingwill101/routed-sub001/router"
)

// Config is the full process configuration. Field tags name the file key
// (config), the environment variable below the ROUTED_ prefix (env) and
// the validation rule (validate).
type Config struct {
	Server    ServerConfig    `config:"server" envPrefix:"SERVER_"`
	Router    RouterConfig    `config:"router" envPrefix:"ROUTER_"`
	Lifecycle LifecycleConfig `config:"lifecycle" envPrefix:"LIFECYCLE_"`
	Log       LogConfig       `config:"log" envPrefix:"LOG_"`
	Metrics   MetricsConfig   `config:"metrics" envPrefix:"METRICS_"`
	Tracing   TracingConfig   `config:"tracing" envPrefix:"TRACING_"`
	Health    HealthConfig    `config:"health" envPrefix:"HEALTH_"`

	Compression CompressionConfig `config:"compression" envPrefix:"COMPRESSION_"`
	RateLimit   RateLimitConfig   `config:"rate_limit" envPrefix:"RATE_LIMIT_"`
}

// ServerConfig configures the listener.
type ServerConfig struct {
	Addr              string        `config:"addr" env:"ADDR" validate:"required,hostname_port"`
	H2C               bool          `config:"h2c" env:"H2C"`
	TLSCertFile       string        `config:"tls_cert_file" env:"TLS_CERT_FILE" validate:"required_with=TLSKeyFile,omitempty,file"`
	TLSKeyFile        string        `config:"tls_key_file" env:"TLS_KEY_FILE" validate:"required_with=TLSCertFile,omitempty,file"`
	ReadTimeout       time.Duration `config:"read_timeout" env:"READ_TIMEOUT" validate:"min=0"`
	ReadHeaderTimeout time.Duration `config:"read_header_timeout" env:"READ_HEADER_TIMEOUT" validate:"min=0"`
	WriteTimeout      time.Duration `config:"write_timeout" env:"WRITE_TIMEOUT" validate:"min=0"`
	IdleTimeout       time.Duration `config:"idle_timeout" env:"IDLE_TIMEOUT" validate:"min=0"`
	MaxHeaderBytes    int           `config:"max_header_bytes" env:"MAX_HEADER_BYTES" validate:"min=0"`
	ShutdownGrace     time.Duration `config:"shutdown_grace" env:"SHUTDOWN_GRACE" validate:"min=0"`
	Banner            bool          `config:"banner" env:"BANNER"`
}

// RouterConfig maps onto router options.
type RouterConfig struct {
	RedirectTrailingSlash bool     `config:"redirect_trailing_slash" env:"REDIRECT_TRAILING_SLASH"`
	MethodNotAllowed      bool     `config:"method_not_allowed" env:"METHOD_NOT_ALLOWED"`
	AutoOptions           bool     `config:"auto_options" env:"AUTO_OPTIONS"`
	CollapseSlashes       bool     `config:"collapse_slashes" env:"COLLAPSE_SLASHES"`
	Trie                  bool     `config:"trie" env:"TRIE"`
	EagerMiddleware       bool     `config:"eager_middleware" env:"EAGER_MIDDLEWARE"`
	ExposeErrors          bool     `config:"expose_errors" env:"EXPOSE_ERRORS"`
	MaxBodySize           int64    `config:"max_body_size" env:"MAX_BODY_SIZE" validate:"min=0"`
	HealthPaths           []string `config:"health_paths" env:"HEALTH_PATHS" validate:"dive,startswith=/"`
	RetryAfter            int      `config:"retry_after" env:"RETRY_AFTER" validate:"min=0"`
	TrustedProxies        []string `config:"trusted_proxies" env:"TRUSTED_PROXIES" validate:"dive,cidr|ip"`
}

// LifecycleConfig configures draining.
type LifecycleConfig struct {
	AllowPaths []string `config:"allow_paths" env:"ALLOW_PATHS" validate:"dive,startswith=/"`
	ULIDs      bool     `config:"ulids" env:"ULIDS"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level   string `config:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format  string `config:"format" env:"FORMAT" validate:"oneof=json text console"`
	Service string `config:"service" env:"SERVICE"`
	Version string `config:"version" env:"VERSION"`
	Source  bool   `config:"source" env:"SOURCE"`
}

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	Enabled   bool   `config:"enabled" env:"ENABLED"`
	Path      string `config:"path" env:"PATH" validate:"required_if=Enabled true,omitempty,startswith=/"`
	Namespace string `config:"namespace" env:"NAMESPACE"`
	Runtime   bool   `config:"runtime" env:"RUNTIME"`
}

// TracingConfig configures the OpenTelemetry recorder.
type TracingConfig struct {
	Enabled bool `config:"enabled" env:"ENABLED"`
	// SampleRatio is the fraction of root spans kept.
	SampleRatio float64 `config:"sample_ratio" env:"SAMPLE_RATIO" validate:"min=0,max=1"`
	Exporter    string  `config:"exporter" env:"EXPORTER" validate:"oneof=noop stdout otlp otlp-http"`
	Endpoint    string  `config:"endpoint" env:"ENDPOINT" validate:"required_if=Exporter otlp,required_if=Exporter otlp-http"`
	Insecure    bool    `config:"insecure" env:"INSECURE"`
}

// HealthConfig places the probe endpoints. An empty path disables that
// probe. Both paths stay reachable while draining.
type HealthConfig struct {
	Liveness  string        `config:"liveness" env:"LIVENESS" validate:"omitempty,startswith=/"`
	Readiness string        `config:"readiness" env:"READINESS" validate:"omitempty,startswith=/"`
	Timeout   time.Duration `config:"timeout" env:"TIMEOUT" validate:"min=0"`
}

// CompressionConfig configures response compression.
type CompressionConfig struct {
	Enabled     bool `config:"enabled" env:"ENABLED"`
	GzipLevel   int  `config:"gzip_level" env:"GZIP_LEVEL" validate:"min=-2,max=9"`
	BrotliLevel int  `config:"brotli_level" env:"BROTLI_LEVEL" validate:"min=0,max=11"`
	Brotli      bool `config:"brotli" env:"BROTLI"`
}

// RateLimitConfig configures per-client rate limiting. Health probes and
// the metrics endpoint are never limited.
type RateLimitConfig struct {
	Enabled bool          `config:"enabled" env:"ENABLED"`
	Rate    float64       `config:"rate" env:"RATE" validate:"required_if=Enabled true,min=0"`
	Burst   int           `config:"burst" env:"BURST" validate:"required_if=Enabled true,min=0"`
	IdleTTL time.Duration `config:"idle_ttl" env:"IDLE_TTL" validate:"min=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
			ShutdownGrace:     30 * time.Second,
			Banner:            true,
		},
		Router: RouterConfig{
			RedirectTrailingSlash: true,
			MethodNotAllowed:      true,
			AutoOptions:           true,
			MaxBodySize:           router.DefaultMaxBodySize,
			RetryAfter:            5,
		},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Service: "routed",
		},
		Metrics: MetricsConfig{
			Path:      "/metrics",
			Namespace: "routed",
		},
		Tracing: TracingConfig{
			SampleRatio: 1,
			Exporter:    "noop",
		},
		Health: HealthConfig{
			Liveness:  "/healthz",
			Readiness: "/readyz",
			Timeout:   time.Second,
		},
		Compression: CompressionConfig{
			GzipLevel:   -1,
			BrotliLevel: 4,
			Brotli:      true,
		},
		RateLimit: RateLimitConfig{
			Rate:    100,
			Burst:   20,
			IdleTTL: 5 * time.Minute,
		},
	}
}

// HealthPaths returns the router health paths plus the probe endpoints.
func (c *Config) HealthPaths() []string {
	paths := slices.Clone(c.Router.HealthPaths)
	for _, p := range []string{c.Health.Liveness, c.Health.Readiness} {
		if p != "" && !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}
