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
// Package semconv names the attribute keys shared by the logging, tracing
// and diagnostics output of the router.
//
// HTTP keys follow the stable OpenTelemetry HTTP semantic conventions so
// spans exported by the tracing package are understood by any OTel backend.
// Correlation keys are the plain snake_case names used in log records.
package semconv

// Service metadata, attached once to the tracer resource and the root logger.
const (
	ServiceName       = "service.name"
	ServiceVersion    = "service.version"
	DeploymentEnviron = "deployment.environment"
)

// HTTP server span attributes.
const (
	HTTPRequestMethod    = "http.request.method"
	HTTPRoute            = "http.route"
	HTTPResponseStatus   = "http.response.status_code"
	HTTPResponseBodySize = "http.response.body.size"

	// HTTPRequestHeaderPrefix is followed by the lower-cased header name.
	HTTPRequestHeaderPrefix = "http.request.header."

	URLPath                = "url.path"
	URLQuery               = "url.query"
	URLScheme              = "url.scheme"
	ServerAddress          = "server.address"
	NetworkProtocolVersion = "network.protocol.version"
	UserAgentOriginal      = "user_agent.original"
)

// Log correlation keys.
const (
	TraceID   = "trace_id"
	SpanID    = "span_id"
	RequestID = "request_id"

	// DiagnosticKind carries the kind of a router diagnostic event.
	DiagnosticKind = "kind"
)
