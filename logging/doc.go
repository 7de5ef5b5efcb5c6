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
// Package logging builds the [log/slog] logger shared by the engine, the
// server and the stock middleware.
//
// # Basic Usage
//
//	logger := logging.MustNew(logging.WithConsoleHandler())
//	defer logger.Shutdown(context.Background())
//
//	e := router.MustNew(router.WithLogger(logger.Logger()))
//
// # Structured Logging
//
//	logger := logging.MustNew(
//	    logging.WithJSONHandler(),
//	    logging.WithServiceName("routed"),
//	    logging.WithServiceVersion("1.4.0"),
//	)
//
// # Log Sampling
//
//	logger := logging.MustNew(
//	    logging.WithSampling(logging.SamplingConfig{
//	        Initial:    100,
//	        Thereafter: 100,
//	        Tick:       time.Minute,
//	    }),
//	)
//
// Errors always bypass sampling. Sampling lives in the handler, so loggers
// derived with With share the same counter.
//
// # Dynamic Log Levels
//
// SetLevel is backed by a [slog.LevelVar] and affects every derived logger:
//
//	logger.SetLevel(logging.LevelDebug)
//
// # Sensitive Data Redaction
//
// Values under password, token, secret, api_key, authorization and cookie
// keys are replaced with "***REDACTED***".
//
// # Trace Correlation
//
// [ForContext] adds trace_id and span_id from an active OpenTelemetry span.
package logging
