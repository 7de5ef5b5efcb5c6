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

// Package compiler turns route templates into matchers.
//
// Templates are made of literal text and placeholders:
//
//	/users/{id}            required, pattern from the "id" name or [^/]+
//	/items/{id:int}        required, pattern and cast of the "int" type
//	/posts/{slug?}         optional
//	/files/{*path}         wildcard, captures the rest including slashes
//	/admin/*               fallback, matches /admin and everything below
//
// A template without '{' or '*' is static and is matched by exact lookup.
// Everything else is compiled to an anchored regular expression with one
// named group per placeholder. Captured values are percent-decoded and cast
// through the [Registry] using the placeholder's declared type.
//
// The registry ships with int, double, uuid, slug, word, string, date,
// email, url and ip. Numeric casts never fail loudly: a value that does not
// parse casts to nil.
package compiler
