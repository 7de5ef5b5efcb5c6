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
// Package tracing records one OpenTelemetry server span per request.
//
// A [Tracer] implements router.ObservabilityRecorder. The span starts
// before routing, named after the method, with the incoming W3C trace
// context as parent. When the request finishes it is renamed to
// "METHOD /route/{template}" and tagged with http.route and the status
// code. Responses of 500 and above set the span status to Error.
// Unmatched requests keep the method-only name so span names stay bounded.
//
//	tr, err := tracing.New(
//	    tracing.WithServiceName("orders"),
//	    tracing.WithOTLP("collector:4317", tracing.OTLPInsecure()),
//	    tracing.WithSampleRate(0.1),
//	    tracing.WithExcludePaths("/healthz", "/metrics"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tr.Shutdown(context.Background())
//
//	e := router.MustNew(router.WithObservability(tr))
//
// Handlers see the span through the request context, so
// [SpanFromContext] and logging.ForContext pick it up.
//
// # Exporters
//
// [NoopExporter] is the default. [StdoutExporter] is for development.
// [OTLPExporter] and [OTLPHTTPExporter] send to a collector. A provider
// built elsewhere can be passed with [WithTracerProvider].
package tracing
