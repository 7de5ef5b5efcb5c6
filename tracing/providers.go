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
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kingwill101/routed-sub001/telemetry/semconv"
)

func (t *Tracer) initProvider(ctx context.Context) error {
	if t.cfg.provider != nil {
		t.provider = t.cfg.provider
		return nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(newResource(t.cfg.serviceName, t.cfg.serviceVersion)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.cfg.sampleRate))),
	}

	exp, err := t.newExporter(ctx)
	if err != nil {
		return err
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	t.sdk = sdktrace.NewTracerProvider(opts...)
	t.provider = t.sdk
	return nil
}

// newExporter returns nil for the noop exporter. OTLP exporters connect
// lazily, so ctx only bounds their setup.
func (t *Tracer) newExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	cfg := t.cfg
	switch cfg.exporter {
	case StdoutExporter:
		w := cfg.stdout
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("tracing: stdout exporter: %w", err)
		}
		return exp, nil

	case OTLPExporter:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.endpoint)}
		if cfg.insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err := otlptracegrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("tracing: otlp exporter: %w", err)
		}
		return exp, nil

	case OTLPHTTPExporter:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.endpoint)}
		if cfg.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("tracing: otlp-http exporter: %w", err)
		}
		return exp, nil
	}
	return nil, nil
}

func newResource(name, version string) *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String(semconv.ServiceName, name)}
	if version != "" {
		attrs = append(attrs, attribute.String(semconv.ServiceVersion, version))
	}
	return resource.NewSchemaless(attrs...)
}
