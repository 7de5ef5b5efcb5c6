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
package tracing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kingwill101/routed-sub001/internal/pathfilter"
)

// Exporter selects where spans go.
type Exporter string

const (
	// NoopExporter samples and records spans but exports nothing.
	NoopExporter Exporter = "noop"
	// StdoutExporter pretty-prints spans, for development.
	StdoutExporter Exporter = "stdout"
	// OTLPExporter sends spans to a collector over gRPC.
	OTLPExporter Exporter = "otlp"
	// OTLPHTTPExporter sends spans to a collector over HTTP.
	OTLPHTTPExporter Exporter = "otlp-http"
)

// SpanStartHook runs after a request span starts.
type SpanStartHook func(ctx context.Context, span trace.Span, req *http.Request)

// SpanFinishHook runs just before a request span ends.
type SpanFinishHook func(span trace.Span, statusCode int)

// Option configures a Tracer.
type Option func(*config)

type config struct {
	serviceName    string
	serviceVersion string
	sampleRate     float64
	exporter       Exporter
	endpoint       string
	insecure       bool
	stdout         io.Writer

	provider       trace.TracerProvider
	registerGlobal bool
	propagator     propagation.TextMapPropagator

	filter     *pathfilter.Filter
	headers    []string
	startHook  SpanStartHook
	finishHook SpanFinishHook
	logger     *slog.Logger

	errs []error
}

func defaultConfig() *config {
	return &config{
		serviceName: DefaultServiceName,
		sampleRate:  DefaultSampleRate,
		exporter:    NoopExporter,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		filter: pathfilter.New(),
		logger: discardLogger(),
	}
}

func (c *config) validate() error {
	switch c.exporter {
	case NoopExporter, StdoutExporter:
	case OTLPExporter, OTLPHTTPExporter:
		if c.endpoint == "" && c.provider == nil {
			c.errs = append(c.errs, errNoEndpoint)
		}
	default:
		c.errs = append(c.errs, fmt.Errorf("tracing: unsupported exporter %q", c.exporter))
	}
	if len(c.errs) > 0 {
		return c.errs[0]
	}
	return nil
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithSampleRate sets the fraction of root spans kept. Values are clamped
// to [0, 1]. Child spans follow the parent's decision.
func WithSampleRate(rate float64) Option {
	return func(c *config) { c.sampleRate = min(max(rate, 0), 1) }
}

// WithNoop records spans without exporting them.
func WithNoop() Option {
	return func(c *config) { c.exporter = NoopExporter }
}

// WithStdout pretty-prints spans to w, or to standard output when w is nil.
func WithStdout(w io.Writer) Option {
	return func(c *config) {
		c.exporter = StdoutExporter
		c.stdout = w
	}
}

// OTLPOption tunes an OTLP exporter.
type OTLPOption func(*config)

// OTLPInsecure disables TLS towards the collector.
func OTLPInsecure() OTLPOption {
	return func(c *config) { c.insecure = true }
}

// WithOTLP exports over gRPC to endpoint, for example "collector:4317".
func WithOTLP(endpoint string, opts ...OTLPOption) Option {
	return func(c *config) {
		c.exporter = OTLPExporter
		c.endpoint = endpoint
		for _, opt := range opts {
			opt(c)
		}
	}
}

// WithOTLPHTTP exports over HTTP to endpoint, for example "collector:4318".
func WithOTLPHTTP(endpoint string, opts ...OTLPOption) Option {
	return func(c *config) {
		c.exporter = OTLPHTTPExporter
		c.endpoint = endpoint
		for _, opt := range opts {
			opt(c)
		}
	}
}

// WithExporter selects an exporter by name, as read from configuration.
func WithExporter(name string, endpoint string, insecure bool) Option {
	return func(c *config) {
		c.exporter = Exporter(name)
		c.endpoint = endpoint
		c.insecure = insecure
	}
}

// WithTracerProvider uses an existing provider. Exporter options and the
// sample rate are ignored, and Shutdown leaves the provider running.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.provider = tp }
}

// WithGlobalTracerProvider also installs the provider and propagator as
// the otel globals.
func WithGlobalTracerProvider() Option {
	return func(c *config) { c.registerGlobal = true }
}

// WithPropagator replaces the W3C trace context and baggage propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *config) {
		if p != nil {
			c.propagator = p
		}
	}
}

// WithExcludePaths skips exact paths.
func WithExcludePaths(paths ...string) Option {
	return func(c *config) { c.filter.AddPaths(paths...) }
}

// WithExcludePrefixes skips path hierarchies.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) { c.filter.AddPrefixes(prefixes...) }
}

// WithExcludePatterns skips paths matching any regular expression.
func WithExcludePatterns(patterns ...string) Option {
	return func(c *config) {
		if err := c.filter.AddPatterns(patterns...); err != nil {
			c.errs = append(c.errs, fmt.Errorf("tracing: %w", err))
		}
	}
}

// WithHeaders records the named request headers as span attributes.
// Sensitive headers are refused.
func WithHeaders(headers ...string) Option {
	return func(c *config) {
		for _, h := range headers {
			switch http.CanonicalHeaderKey(h) {
			case "Authorization", "Cookie", "Set-Cookie", "Proxy-Authorization":
				c.errs = append(c.errs, fmt.Errorf("tracing: refusing to record sensitive header %q", h))
			default:
				c.headers = append(c.headers, h)
			}
		}
	}
}

// WithSpanStartHook runs hook after each request span starts.
func WithSpanStartHook(hook SpanStartHook) Option {
	return func(c *config) { c.startHook = hook }
}

// WithSpanFinishHook runs hook before each request span ends.
func WithSpanFinishHook(hook SpanFinishHook) Option {
	return func(c *config) { c.finishHook = hook }
}

// WithLogger receives setup messages.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
