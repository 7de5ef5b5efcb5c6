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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/telemetry/semconv"
)

const instrumentationName = "github.com/kingwill101/routed-sub001/tracing"

const (
	// DefaultServiceName is used when WithServiceName is not given.
	DefaultServiceName = "routed"

	// DefaultSampleRate keeps every root span.
	DefaultSampleRate = 1.0
)

var _ router.ObservabilityRecorder = (*Tracer)(nil)

// Tracer starts a server span per request and ends it once the route
// template and final status are known.
type Tracer struct {
	cfg        *config
	provider   trace.TracerProvider
	sdk        *sdktrace.TracerProvider // nil when the provider is not ours
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator

	shutdownOnce sync.Once
	shutdownErr  error
}

type requestState struct {
	span   trace.Span
	method string
}

// New builds the tracer and its exporter.
func New(opts ...Option) (*Tracer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	t := &Tracer{cfg: cfg, propagator: cfg.propagator}
	if err := t.initProvider(context.Background()); err != nil {
		return nil, err
	}
	t.tracer = t.provider.Tracer(instrumentationName)
	if cfg.registerGlobal {
		otel.SetTracerProvider(t.provider)
		otel.SetTextMapPropagator(t.propagator)
	}
	cfg.logger.Debug("tracing initialized",
		"exporter", string(cfg.exporter),
		"service", cfg.serviceName,
		"sample_rate", cfg.sampleRate,
	)
	return t, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// OnRequestStart extracts the incoming trace context and starts a server
// span named after the method. Excluded paths get no span.
func (t *Tracer) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if t.cfg.filter.Excluded(req.URL.Path) {
		return ctx, nil
	}
	ctx = t.propagator.Extract(ctx, propagation.HeaderCarrier(req.Header))

	attrs := make([]attribute.KeyValue, 0, 8+len(t.cfg.headers))
	attrs = append(attrs,
		attribute.String(semconv.HTTPRequestMethod, req.Method),
		attribute.String(semconv.URLPath, req.URL.Path),
		attribute.String(semconv.URLScheme, scheme(req)),
		attribute.String(semconv.ServerAddress, req.Host),
		attribute.String(semconv.NetworkProtocolVersion, protocolVersion(req)),
	)
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String(semconv.UserAgentOriginal, ua))
	}
	if req.URL.RawQuery != "" {
		attrs = append(attrs, attribute.String(semconv.URLQuery, req.URL.RawQuery))
	}
	for _, h := range t.cfg.headers {
		if v := req.Header.Get(h); v != "" {
			attrs = append(attrs, attribute.String(semconv.HTTPRequestHeaderPrefix+strings.ToLower(h), v))
		}
	}

	ctx, span := t.tracer.Start(ctx, req.Method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
	if t.cfg.startHook != nil {
		t.cfg.startHook(ctx, span, req)
	}
	return ctx, &requestState{span: span, method: req.Method}
}

// OnRequestEnd names the span after the route template, records the
// status and ends it. Statuses of 500 and above mark the span as failed.
func (t *Tracer) OnRequestEnd(_ context.Context, state any, info router.ResponseInfo, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}
	span := st.span

	status := info.StatusCode()
	if status == 0 {
		status = http.StatusOK
	}
	if isTemplate(routePattern) {
		span.SetName(st.method + " " + routePattern)
		span.SetAttributes(attribute.String(semconv.HTTPRoute, routePattern))
	}
	span.SetAttributes(
		attribute.Int(semconv.HTTPResponseStatus, status),
		attribute.Int64(semconv.HTTPResponseBodySize, info.Size()),
	)
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	if t.cfg.finishHook != nil {
		t.cfg.finishHook(span, status)
	}
	span.End()
}

// Inject writes the trace context of ctx into h, for outbound requests.
func (t *Tracer) Inject(ctx context.Context, h http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(h))
}

// Start begins a child span of whatever span ctx carries.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Shutdown flushes and stops the exporter. Only the first call does work.
// A provider passed with WithTracerProvider is left to its owner.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		if t.sdk == nil {
			return
		}
		if err := t.sdk.Shutdown(ctx); err != nil {
			t.shutdownErr = fmt.Errorf("tracing: shutdown: %w", err)
		}
	})
	return t.shutdownErr
}

// SpanFromContext is trace.SpanFromContext, for handlers that only import
// this package.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// Sentinel patterns start with an underscore and are not templates.
func isTemplate(p string) bool {
	return p != "" && !strings.HasPrefix(p, "_")
}

func scheme(req *http.Request) string {
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

func protocolVersion(req *http.Request) string {
	switch req.ProtoMajor {
	case 2:
		return "2"
	case 3:
		return "3"
	}
	if req.ProtoMinor == 0 {
		return "1.0"
	}
	return "1.1"
}

var errNoEndpoint = errors.New("tracing: OTLP exporter requires an endpoint")

// logger returns a discard logger when none is configured.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
