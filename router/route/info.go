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

package route

// Kind is how a route is matched.
type Kind string

const (
	KindStatic   Kind = "static"
	KindPattern  Kind = "pattern"
	KindFallback Kind = "fallback"
)

// Info describes a compiled route for introspection.
type Info struct {
	Method      string
	Path        string
	Name        string
	Kind        Kind
	Params      []string
	ParamSpecs  []ParamSpec
	Middleware  int  // length of the composed chain, handler excluded
	Dynamic     bool // middleware references are resolved per request
	Constraints []string

	Description string
	Tags        []string
	Schema      map[string]any
}

// ParamSpec is one placeholder of a route template. Type is the name of
// the registered parameter type, empty for untyped placeholders.
type ParamSpec struct {
	Name     string
	Type     string
	Optional bool
	Wildcard bool
}
