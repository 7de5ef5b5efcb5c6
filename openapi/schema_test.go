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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type audit struct {
	CreatedAt time.Time `json:"created_at"`
}

type account struct {
	audit

	ID       int64            `json:"id" validate:"required,gt=0"`
	Email    string           `json:"email" validate:"required,email"`
	Nickname *string          `json:"nickname,omitempty" validate:"omitempty,min=2,max=32"`
	Role     string           `json:"role" validate:"oneof=admin member"`
	Level    int              `json:"level" validate:"min=1,max=5"`
	Labels   []string         `json:"labels" validate:"min=1,dive,max=8"`
	Quota    map[string]int   `json:"quota,omitempty"`
	Avatar   []byte           `json:"avatar,omitempty"`
	Extra    json.RawMessage  `json:"extra,omitempty"`
	Secret   string           `json:"-"`
	Legacy   string           `json:",omitempty"`
	Scores   map[string][]int `json:"scores,omitempty"`
	internal string
}

type node struct {
	Name     string  `json:"name"`
	Children []*node `json:"children,omitempty"`
}

func ptr[T any](v T) *T { return &v }

func TestSchema_Struct(t *testing.T) {
	t.Parallel()

	g := newSchemaGen()
	ref := g.of(account{})
	require.Equal(t, "#/components/schemas/openapi.account", ref.Ref)

	s := g.components["openapi.account"]
	require.NotNil(t, s)
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"id", "email"}, s.Required)

	p := s.Properties
	assert.NotContains(t, p, "Secret")
	assert.NotContains(t, p, "internal")
	assert.Contains(t, p, "Legacy")
	assert.Equal(t, &Schema{Type: "string", Format: "date-time"}, p["created_at"], "embedded fields are flattened")

	assert.Equal(t, "integer", p["id"].Type)
	assert.Equal(t, ptr(0.0), p["id"].ExclusiveMinimum)
	assert.Equal(t, "email", p["email"].Format)
	assert.Equal(t, []string{"string", "null"}, p["nickname"].Type)
	assert.Equal(t, ptr(2), p["nickname"].MinLength)
	assert.Equal(t, ptr(32), p["nickname"].MaxLength)
	assert.Equal(t, []any{"admin", "member"}, p["role"].Enum)
	assert.Equal(t, ptr(1.0), p["level"].Minimum)
	assert.Equal(t, ptr(5.0), p["level"].Maximum)
	assert.Equal(t, ptr(1), p["labels"].MinItems)
	assert.Nil(t, p["labels"].Items.MaxLength, "rules after dive are not applied to the array")
	assert.Equal(t, "integer", p["quota"].AdditionalProperties.Type)
	assert.Equal(t, "base64", p["avatar"].ContentEncoding)
	assert.Equal(t, &Schema{}, p["extra"])
	assert.Equal(t, "array", p["scores"].AdditionalProperties.Type)
}

func TestSchema_Recursive(t *testing.T) {
	t.Parallel()

	g := newSchemaGen()
	ref := g.of(node{})
	require.Equal(t, "#/components/schemas/openapi.node", ref.Ref)

	children := g.components["openapi.node"].Properties["children"]
	assert.Equal(t, "array", children.Type)
	assert.Equal(t, "#/components/schemas/openapi.node", children.Items.Ref)
	assert.Len(t, g.components, 1)
}

func TestSchema_Scalars(t *testing.T) {
	t.Parallel()

	g := newSchemaGen()
	assert.Nil(t, g.of(nil))
	assert.Equal(t, &Schema{Type: "boolean"}, g.of(true))
	assert.Equal(t, &Schema{Type: "integer", Format: "int32"}, g.of(int32(1)))
	assert.Equal(t, &Schema{Type: "number", Format: "double"}, g.of(1.5))
	assert.Equal(t, &Schema{Type: "array", Items: &Schema{Type: "string"}}, g.of([]string{}))
	assert.Equal(t, "object", g.of(struct {
		A int `json:"a"`
	}{}).Type, "anonymous structs are inlined")
	assert.Empty(t, g.components)
}

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age" validate:"gte=18,lte=130"`
	Plan  string `json:"plan" validate:"oneof=free pro"`
	Name  string `json:"name" validate:"required,min=1,max=5"`
}

// The generated schema must be a valid JSON Schema and accept exactly the
// documents the validate tags accept.
func TestSchema_ValidatesInstances(t *testing.T) {
	t.Parallel()

	g := newSchemaGen()
	g.of(signup{})
	data, err := json.Marshal(g.components["openapi.signup"])
	require.NoError(t, err)

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	require.NoError(t, err)
	c := jsonschema.NewCompiler()
	require.NoError(t, c.AddResource("signup.json", doc))
	sch, err := c.Compile("signup.json")
	require.NoError(t, err)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid", `{"email":"a@b.io","age":30,"plan":"pro","name":"ada"}`, true},
		{"missing required", `{"age":30,"plan":"pro","name":"ada"}`, false},
		{"below minimum", `{"email":"a@b.io","age":17,"plan":"pro","name":"ada"}`, false},
		{"not in enum", `{"email":"a@b.io","age":30,"plan":"gold","name":"ada"}`, false},
		{"too long", `{"email":"a@b.io","age":30,"plan":"pro","name":"adalovelace"}`, false},
		{"wrong type", `{"email":"a@b.io","age":"30","plan":"pro","name":"ada"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			inst, err := jsonschema.UnmarshalJSON(strings.NewReader(tt.body))
			require.NoError(t, err)
			err = sch.Validate(inst)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
