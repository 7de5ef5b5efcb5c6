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

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params map[string]string

func (p params) Lookup(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

func TestConstraint_Regex(t *testing.T) {
	t.Parallel()

	c, err := Regex("id", `\d+`).Compile()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.True(t, c.Check(req, params{"id": "42"}))
	assert.False(t, c.Check(req, params{"id": "42a"}), "pattern is anchored")
	assert.False(t, c.Check(req, params{}), "missing parameter fails")
	assert.False(t, c.Check(req, nil))
}

func TestConstraint_Domain(t *testing.T) {
	t.Parallel()

	c, err := Domain(`^api\.`).Compile()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "api.example.com:8080"
	assert.True(t, c.Check(req, nil))

	req.Host = "www.example.com"
	assert.False(t, c.Check(req, nil))
}

func TestConstraint_Predicate(t *testing.T) {
	t.Parallel()

	c, err := Predicate(func(r *http.Request) bool {
		return r.Header.Get("X-Beta") == "1"
	}).Compile()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, c.Check(req, nil))
	req.Header.Set("X-Beta", "1")
	assert.True(t, c.Check(req, nil))
}

func TestConstraint_CompileErrors(t *testing.T) {
	t.Parallel()

	for name, c := range map[string]Constraint{
		"bad regex":     Regex("id", `(`),
		"no param":      Regex("", `\d+`),
		"bad domain":    Domain(`[`),
		"nil predicate": Predicate(nil),
		"zero value":    {},
	} {
		_, err := c.Compile()
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrInvalidConstraint, name)
	}
}

func TestConstraint_UncompiledChecksLazily(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, Regex("id", `\d+`).Check(req, params{"id": "7"}))
	assert.False(t, Regex("id", `(`).Check(req, params{"id": "7"}))
}

func TestCheckAll(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "api.example.com"
	ok := Regex("id", `\d+`)
	dom := Domain(`^api\.`)
	bad := Domain(`^admin\.`)

	assert.True(t, CheckAll(nil, req, nil))
	assert.True(t, CheckAll([]Constraint{ok, dom}, req, params{"id": "1"}))
	assert.False(t, CheckAll([]Constraint{ok, dom, bad}, req, params{"id": "1"}))
}

func TestJoinPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		prefix, path, want string
	}{
		{"", "", "/"},
		{"", "/", "/"},
		{"/", "/", "/"},
		{"/api", "/users", "/api/users"},
		{"/api/", "/users", "/api/users"},
		{"/api//", "//users", "/api/users"},
		{"api", "users", "/api/users"},
		{"/api", "", "/api"},
		{"/api", "/", "/api"},
		{"/api", "/users/", "/api/users/"},
		{"/admin", "*", "/admin/*"},
		{"", "*", "/*"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinPath(tt.prefix, tt.path), "JoinPath(%q, %q)", tt.prefix, tt.path)
	}
}

func TestConstraintKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "regex", ConstraintRegex.String())
	assert.Equal(t, "predicate", ConstraintPredicate.String())
	assert.Equal(t, "domain", ConstraintDomain.String())
	assert.Equal(t, "unknown", ConstraintKind(0).String())
}
