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
package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		collapse bool
		want     string
	}{
		{"", false, "/"},
		{"/a//b", false, "/a//b"},
		{"/a//b", true, "/a/b"},
		{"//a///b//", true, "/a/b/"},
		{"/a/b", true, "/a/b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in, tt.collapse), tt.in)
	}
}

func TestToggleSlash(t *testing.T) {
	t.Parallel()

	_, ok := toggleSlash("/")
	assert.False(t, ok)

	alt, ok := toggleSlash("/a")
	require.True(t, ok)
	assert.Equal(t, "/a/", alt)

	alt, ok = toggleSlash("/a/")
	require.True(t, ok)
	assert.Equal(t, "/a", alt)
}

func TestFallbackScore(t *testing.T) {
	t.Parallel()

	assert.Zero(t, fallbackScore("/admin/x", ""))
	admin := fallbackScore("/admin/users/1", "/admin")
	api := fallbackScore("/admin/users/1", "/api")
	assert.Greater(t, admin, api)
	assert.InDelta(t, 1.0, fallbackScore("/admin", "/admin"), 1e-9)
}

func TestSelectFallback_TiesKeepFirst(t *testing.T) {
	t.Parallel()

	e := MustNew()
	e.Fallback(func(c *Context) { _ = c.String(http.StatusOK, "first") })
	e.Fallback(func(c *Context) { _ = c.String(http.StatusOK, "second") })
	tbl, err := e.current()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	fb, score := tbl.selectFallback(http.MethodGet, "/x", req)
	require.NotNil(t, fb)
	assert.Zero(t, score)
	assert.Equal(t, 0, fb.seq)
}

func TestRouteTable_Indexing(t *testing.T) {
	t.Parallel()

	h := func(c *Context) { c.NoContent() }
	e := MustNew(WithTrie(true))
	e.GET("/static", h)
	e.GET("/users/{id:int}", h)
	e.GET("/docs/{page?}", h)
	e.POST("/static", h)
	e.Handle(AnyMethod, "/any", h)
	e.Fallback(h)

	tbl, err := e.current()
	require.NoError(t, err)

	assert.Contains(t, tbl.static[http.MethodGet], "/static")
	assert.Contains(t, tbl.static[http.MethodPost], "/static")
	assert.True(t, tbl.bloom.Test(staticKey(http.MethodGet, "/static")))
	assert.NotNil(t, tbl.tries[http.MethodGet])
	require.Len(t, tbl.patterns[http.MethodGet], 1)
	assert.Equal(t, "/docs/{page?}", tbl.patterns[http.MethodGet][0].path)
	assert.Len(t, tbl.fallbacks, 1)
	assert.Equal(t, []string{http.MethodGet, http.MethodPost}, tbl.methods)

	req := httptest.NewRequest(http.MethodGet, "/users/9", nil)
	r, ps, ok := tbl.lookup(http.MethodGet, "/users/9", req, e.patterns)
	require.True(t, ok)
	assert.Equal(t, "/users/{id:int}", r.path)
	assert.Equal(t, 9, ps.Typed["id"])

	req = httptest.NewRequest(http.MethodDelete, "/any", nil)
	r, _, ok = tbl.lookup(http.MethodDelete, "/any", req, e.patterns)
	require.True(t, ok)
	assert.Equal(t, AnyMethod, r.method)
}

func TestRouteTable_RebuildOnChange(t *testing.T) {
	t.Parallel()

	e := MustNew()
	first, err := e.current()
	require.NoError(t, err)

	again, err := e.current()
	require.NoError(t, err)
	assert.Same(t, first, again)

	e.GET("/new", func(c *Context) { c.NoContent() })
	rebuilt, err := e.current()
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Len(t, rebuilt.routes, 1)
}
