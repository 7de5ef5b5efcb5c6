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

import (
	"maps"
	"net/http"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// Generator builds documents from route tables.
type Generator struct {
	info    Info
	servers []Server
	exclude map[string]struct{}
}

// New returns a generator configured by opts.
func New(opts ...Option) *Generator {
	g := &Generator{
		info:    Info{Title: "API", Version: "0.0.0"},
		exclude: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromEngine documents the engine's current route table.
func (g *Generator) FromEngine(e *router.Engine) (*Document, error) {
	routes, err := e.Routes()
	if err != nil {
		return nil, err
	}
	return g.Build(routes, e.Patterns()), nil
}

var documented = map[string]bool{
	http.MethodGet: true, http.MethodPut: true, http.MethodPost: true,
	http.MethodDelete: true, http.MethodOptions: true, http.MethodHead: true,
	http.MethodPatch: true, http.MethodTrace: true,
}

// Build documents routes. Fallback routes and methods OpenAPI cannot
// express are skipped. reg resolves custom parameter types and may be nil.
func (g *Generator) Build(routes []route.Info, reg *compiler.Registry) *Document {
	doc := &Document{
		OpenAPI: Version,
		Info:    g.info,
		Servers: g.servers,
		Paths:   make(map[string]PathItem),
	}
	schemas := newSchemaGen()
	tags := make(map[string]struct{})

	for _, ri := range routes {
		if ri.Kind == route.KindFallback || !documented[ri.Method] {
			continue
		}
		if _, skip := g.exclude[ri.Name]; skip && ri.Name != "" {
			continue
		}
		path := openAPIPath(ri.Path)
		item := doc.Paths[path]
		if item == nil {
			item = make(PathItem)
			doc.Paths[path] = item
		}
		item[strings.ToLower(ri.Method)] = operation(ri, reg, schemas)
		for _, t := range ri.Tags {
			tags[t] = struct{}{}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(tags)) {
		doc.Tags = append(doc.Tags, Tag{Name: name})
	}
	if len(schemas.components) > 0 {
		doc.Components = &Components{Schemas: schemas.components}
	}
	return doc
}

func operation(ri route.Info, reg *compiler.Registry, schemas *schemaGen) *Operation {
	op := &Operation{
		OperationID: ri.Name,
		Description: ri.Description,
		Tags:        ri.Tags,
		Responses:   make(map[string]*ResponseObject),
	}
	if op.OperationID == "" {
		op.OperationID = operationID(ri.Method, ri.Path)
	}
	if s, ok := ri.Schema[KeySummary].(string); ok {
		op.Summary = s
	}
	if d, ok := ri.Schema[KeyDeprecated].(bool); ok {
		op.Deprecated = d
	}

	for _, ps := range ri.ParamSpecs {
		op.Parameters = append(op.Parameters, pathParameter(ps, reg))
	}
	if v, ok := ri.Schema[KeyParams]; ok && v != nil {
		op.Parameters = append(op.Parameters, structParameters(v, schemas)...)
	}

	if v, ok := ri.Schema[KeyRequest]; ok && v != nil {
		op.RequestBody = &RequestBody{
			Required: true,
			Content:  map[string]MediaType{"application/json": {Schema: schemas.of(v)}},
		}
	}

	for key, v := range ri.Schema {
		code, ok := strings.CutPrefix(key, keyResponsePrefix)
		if !ok {
			continue
		}
		resp := &ResponseObject{Description: responseDescription(code)}
		if r, ok := v.(response); ok && r.body != nil {
			resp.Content = map[string]MediaType{"application/json": {Schema: schemas.of(r.body)}}
		}
		op.Responses[code] = resp
	}
	if len(op.Responses) == 0 {
		op.Responses["200"] = &ResponseObject{Description: "OK"}
	}
	return op
}

var placeholderRe = regexp.MustCompile(`\{\s*\*?([A-Za-z_][A-Za-z0-9_]*)(?::[^}?]*)?\??\s*\}`)

// openAPIPath reduces route placeholders to their names.
func openAPIPath(template string) string {
	return placeholderRe.ReplaceAllString(template, "{$1}")
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

func operationID(method, template string) string {
	path := strings.Trim(nonIdent.ReplaceAllString(openAPIPath(template), "_"), "_")
	if path == "" {
		path = "root"
	}
	return strings.ToLower(method) + "_" + path
}

func responseDescription(code string) string {
	n, err := strconv.Atoi(code)
	if err != nil {
		return code
	}
	if text := http.StatusText(n); text != "" {
		return text
	}
	return code
}

// Path parameters are always required in OpenAPI. Optional placeholders
// are documented on the full path with a note instead of a second path.
func pathParameter(ps route.ParamSpec, reg *compiler.Registry) *Parameter {
	p := &Parameter{
		Name:     ps.Name,
		In:       "path",
		Required: true,
		Schema:   paramSchema(ps, reg),
	}
	switch {
	case ps.Optional:
		p.Description = "Optional: the route also matches without this segment."
	case ps.Wildcard:
		p.Description = "Matches the remainder of the path, slashes included."
	}
	return p
}

func paramSchema(ps route.ParamSpec, reg *compiler.Registry) *Schema {
	if ps.Wildcard {
		return &Schema{Type: "string"}
	}
	switch ps.Type {
	case "int":
		return &Schema{Type: "integer"}
	case "double":
		return &Schema{Type: "number"}
	case "uuid":
		return &Schema{Type: "string", Format: "uuid"}
	case "date":
		return &Schema{Type: "string", Format: "date"}
	case "email":
		return &Schema{Type: "string", Format: "email"}
	case "url":
		return &Schema{Type: "string", Format: "uri"}
	case "ip":
		return &Schema{Type: "string", Format: "ipv4"}
	}
	s := &Schema{Type: "string"}
	if reg == nil {
		return s
	}
	if ps.Type != "" {
		if def, ok := reg.ResolveType(ps.Type); ok {
			s.Pattern = anchored(def.Pattern)
		}
	} else if pattern, ok := reg.ResolveParamPattern(ps.Name); ok {
		s.Pattern = anchored(pattern)
	}
	return s
}

func anchored(pattern string) string {
	return "^(?:" + pattern + ")$"
}

func structParameters(v any, schemas *schemaGen) []*Parameter {
	var params []*Parameter
	for _, in := range []string{"query", "header"} {
		walkFields(reflect.TypeOf(v), in, func(f reflect.StructField, name string) {
			s := schemas.generate(f.Type)
			tag := f.Tag.Get("validate")
			applyConstraints(s, f.Type, tag)
			params = append(params, &Parameter{
				Name:        name,
				In:          in,
				Description: f.Tag.Get("doc"),
				Required:    hasRule(tag, "required"),
				Schema:      s,
			})
		})
	}
	return params
}
