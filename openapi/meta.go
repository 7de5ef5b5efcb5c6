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
package openapi

import "strconv"

// Route schema keys read by the generator.
const (
	KeySummary        = "openapi.summary"
	KeyRequest        = "openapi.request"
	KeyParams         = "openapi.params"
	KeyDeprecated     = "openapi.deprecated"
	keyResponsePrefix = "openapi.response."
)

type response struct{ body any }

// Summary sets the operation summary.
func Summary(s string) (string, any) { return KeySummary, s }

// Request declares the JSON request body type.
func Request(body any) (string, any) { return KeyRequest, body }

// Params declares query and header parameters from the query and header
// tags of a struct, the same tags the binding package reads.
func Params(v any) (string, any) { return KeyParams, v }

// Response declares a response. A nil body documents a response without
// content.
func Response(status int, body any) (string, any) {
	return keyResponsePrefix + strconv.Itoa(status), response{body: body}
}

// Deprecated marks the operation deprecated.
func Deprecated() (string, any) { return KeyDeprecated, true }
