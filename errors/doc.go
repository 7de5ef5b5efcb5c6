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
// Package errors formats errors into HTTP responses.
//
// A Formatter converts an error into a Response. Two formats ship with
// the package:
//   - RFC9457: RFC 9457 Problem Details (application/problem+json)
//   - Simple: a flat JSON object (application/json)
//
// Errors steer the output by implementing optional interfaces:
// ErrorType declares a status code, ErrorDetails exposes structured
// details and ErrorCode exposes a machine-readable code. Errors without
// a declared status map to 500.
//
//	f := errors.NewRFC9457("https://api.example.com/problems")
//	_ = f.Format(req, err).Write(w)
package errors
