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
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timeType       = reflect.TypeFor[time.Time]()
	rawMessageType = reflect.TypeFor[json.RawMessage]()
)

// schemaGen turns Go types into schemas. Named structs are stored in
// components and referenced by name.
type schemaGen struct {
	components map[string]*Schema
	names      map[reflect.Type]string
}

func newSchemaGen() *schemaGen {
	return &schemaGen{
		components: make(map[string]*Schema),
		names:      make(map[reflect.Type]string),
	}
}

// of returns the schema for the dynamic type of v, or nil when v is nil.
func (g *schemaGen) of(v any) *Schema {
	if v == nil {
		return nil
	}
	return g.generate(reflect.TypeOf(v))
}

func (g *schemaGen) generate(t reflect.Type) *Schema {
	switch t {
	case timeType:
		return &Schema{Type: "string", Format: "date-time"}
	case rawMessageType:
		return &Schema{}
	}

	switch t.Kind() {
	case reflect.Pointer:
		return nullable(g.generate(t.Elem()))
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return &Schema{Type: "integer", Format: "int32"}
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return &Schema{Type: "integer", Format: "int64"}
	case reflect.Float32:
		return &Schema{Type: "number", Format: "float"}
	case reflect.Float64:
		return &Schema{Type: "number", Format: "double"}
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: "string", ContentEncoding: "base64"}
		}
		return &Schema{Type: "array", Items: g.generate(t.Elem())}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.generate(t.Elem())}
	case reflect.Struct:
		if t.Name() == "" {
			return g.structSchema(t)
		}
		return g.ref(t)
	default:
		// interfaces, funcs and channels accept anything
		return &Schema{}
	}
}

func (g *schemaGen) ref(t reflect.Type) *Schema {
	name, ok := g.names[t]
	if !ok {
		name = g.uniqueName(t)
		g.names[t] = name
		// placeholder first so self-referencing types terminate
		g.components[name] = &Schema{}
		*g.components[name] = *g.structSchema(t)
	}
	return &Schema{Ref: "#/components/schemas/" + name}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uniqueName is "pkg.Type", suffixed when two packages share a base name.
func (g *schemaGen) uniqueName(t reflect.Type) string {
	base := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		base = pkg[strings.LastIndex(pkg, "/")+1:] + "." + base
	}
	base = strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_")
	name := base
	for i := 2; ; i++ {
		if _, taken := g.components[name]; !taken {
			return name
		}
		name = base + "_" + strconv.Itoa(i)
	}
}

func (g *schemaGen) structSchema(t reflect.Type) *Schema {
	s := &Schema{Type: "object", Properties: make(map[string]*Schema)}
	walkFields(t, "json", func(f reflect.StructField, name string) {
		prop := g.generate(f.Type)
		tag := f.Tag.Get("validate")
		applyConstraints(prop, f.Type, tag)
		if doc := f.Tag.Get("doc"); doc != "" && prop.Ref == "" {
			prop.Description = doc
		}
		s.Properties[name] = prop
		if hasRule(tag, "required") {
			s.Required = append(s.Required, name)
		}
	})
	return s
}

// walkFields visits the exported fields of t named by tagKey, flattening
// untagged embedded structs the way encoding/json does.
func walkFields(t reflect.Type, tagKey string, fn func(f reflect.StructField, name string)) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := range t.NumField() {
		f := t.Field(i)
		tag, hasTag := f.Tag.Lookup(tagKey)
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				walkFields(ft, tagKey, fn)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			if tagKey != "json" && !hasTag {
				continue
			}
			name = f.Name
		}
		fn(f, name)
	}
}

func nullable(s *Schema) *Schema {
	if typ, ok := s.Type.(string); ok {
		s.Type = []string{typ, "null"}
	}
	return s
}

func hasRule(tag, rule string) bool {
	for r := range strings.SplitSeq(tag, ",") {
		if r == "dive" {
			return false
		}
		if r == rule {
			return true
		}
	}
	return false
}

// applyConstraints maps validator rules onto schema keywords. Rules after
// "dive" apply to elements and are ignored.
func applyConstraints(s *Schema, t reflect.Type, tag string) {
	if tag == "" || s.Ref != "" {
		return
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for rule := range strings.SplitSeq(tag, ",") {
		key, val, _ := strings.Cut(rule, "=")
		switch key {
		case "dive":
			return
		case "email":
			s.Format = "email"
		case "url", "uri", "http_url":
			s.Format = "uri"
		case "uuid", "uuid4":
			s.Format = "uuid"
		case "ipv4":
			s.Format = "ipv4"
		case "ipv6":
			s.Format = "ipv6"
		case "hostname", "hostname_rfc1123":
			s.Format = "hostname"
		case "oneof":
			for v := range strings.FieldsSeq(val) {
				s.Enum = append(s.Enum, enumValue(t, v))
			}
		case "min", "gte":
			setBound(s, t, val, false, false)
		case "max", "lte":
			setBound(s, t, val, true, false)
		case "gt":
			setBound(s, t, val, false, true)
		case "lt":
			setBound(s, t, val, true, true)
		case "len":
			setBound(s, t, val, false, false)
			setBound(s, t, val, true, false)
		}
	}
}

func setBound(s *Schema, t reflect.Type, val string, upper, exclusive bool) {
	switch t.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		n, err := strconv.Atoi(val)
		if err != nil {
			return
		}
		if exclusive {
			if upper {
				n--
			} else {
				n++
			}
		}
		if t.Kind() == reflect.String {
			if upper {
				s.MaxLength = &n
			} else {
				s.MinLength = &n
			}
			return
		}
		if upper {
			s.MaxItems = &n
		} else {
			s.MinItems = &n
		}
	default:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return
		}
		switch {
		case upper && exclusive:
			s.ExclusiveMaximum = &f
		case upper:
			s.Maximum = &f
		case exclusive:
			s.ExclusiveMinimum = &f
		default:
			s.Minimum = &f
		}
	}
}

func enumValue(t reflect.Type, v string) any {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return v
}
