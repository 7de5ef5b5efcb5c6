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
// Package openapi describes an engine's compiled route table as an
// OpenAPI 3.1 document.
//
// Paths, methods, names and typed path parameters come from the table
// itself. Anything else is attached to routes with SetSchema using the
// helpers of this package:
//
//	e.POST("/users", createUser).
//	    SetName("users.create").
//	    SetTags("users").
//	    SetSchema(openapi.Summary("Create a user")).
//	    SetSchema(openapi.Request(CreateUser{})).
//	    SetSchema(openapi.Response(http.StatusCreated, User{}))
//
//	e.GET("/openapi.json", openapi.Handler(e,
//	    openapi.WithInfo("Users API", "1.0.0"),
//	))
//
// Request and response schemas are derived from Go types: json tags name
// properties and validate tags become required lists, bounds, formats
// and enums. Named struct types are emitted once under
// components/schemas and referenced elsewhere.
package openapi
