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

// Package route holds the value types shared by the router and its
// tooling: route constraints, path joining and introspection records.
//
// Constraints are a closed set of variants:
//
//	route.Regex("id", `\d+`)                       // parameter must match
//	route.Domain(`^api\.`)                         // host must match
//	route.Predicate(func(r *http.Request) bool {   // arbitrary check
//	    return r.Header.Get("X-Beta") == "1"
//	})
//
// All constraints on a route must pass. A regex constraint on a parameter
// that was not captured fails.
package route
