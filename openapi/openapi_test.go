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
package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingwill101/routed-sub001/openapi"
	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/compiler"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type newUser struct {
	Name string `json:"name" validate:"required"`
}

type search struct {
	Term  string `query:"q" validate:"required" doc:"search term"`
	Limit int    `query:"limit" validate:"max=100"`
	Trace string `header:"X-Trace"`
	Other string
}

func ok(c *router.Context) { c.NoContent() }

func newEngine(t *testing.T) *router.Engine {
	t.Helper()

	e := router.MustNew()
	e.GET("/users/{id:int}", ok).SetName("users.get").SetTags("users").
		SetDescription("Fetches one user.").
		SetSchema(openapi.Summary("Fetch a user")).
		SetSchema(openapi.Response(http.StatusOK, user{})).
		SetSchema(openapi.Response(http.StatusNotFound, nil))
	e.POST("/users", ok).SetName("users.create").SetTags("users", "admin").
		SetSchema(openapi.Request(newUser{})).
		SetSchema(openapi.Response(http.StatusCreated, user{})).
		SetSchema(openapi.Deprecated())
	e.GET("/search", ok).SetSchema(openapi.Params(search{}))
	e.GET("/files/{*path}", ok)
	e.GET("/posts/{slug:slug}/{page?}", ok)
	e.Fallback(ok)
	return e
}

func TestBuild_Operations(t *testing.T) {
	t.Parallel()

	doc, err := openapi.New(openapi.WithInfo("Users", "2.0.0"), openapi.WithServer("https://api.example.com", "")).
		FromEngine(newEngine(t))
	require.NoError(t, err)

	assert.Equal(t, openapi.Version, doc.OpenAPI)
	assert.Equal(t, openapi.Info{Title: "Users", Version: "2.0.0"}, doc.Info)
	assert.Equal(t, []openapi.Server{{URL: "https://api.example.com"}}, doc.Servers)
	assert.Equal(t, []openapi.Tag{{Name: "admin"}, {Name: "users"}}, doc.Tags)
	assert.Len(t, doc.Paths, 5, "fallback routes are not documented")

	get := doc.Paths["/users/{id}"]["get"]
	require.NotNil(t, get)
	assert.Equal(t, "users.get", get.OperationID)
	assert.Equal(t, "Fetch a user", get.Summary)
	assert.Equal(t, "Fetches one user.", get.Description)
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, &openapi.Parameter{
		Name: "id", In: "path", Required: true, Schema: &openapi.Schema{Type: "integer"},
	}, get.Parameters[0])
	assert.Equal(t, "OK", get.Responses["200"].Description)
	assert.Equal(t, "#/components/schemas/openapi_test.user", get.Responses["200"].Content["application/json"].Schema.Ref)
	assert.Equal(t, "Not Found", get.Responses["404"].Description)
	assert.Nil(t, get.Responses["404"].Content)

	create := doc.Paths["/users"]["post"]
	require.NotNil(t, create)
	assert.True(t, create.Deprecated)
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Required)
	assert.Equal(t, "#/components/schemas/openapi_test.newUser",
		create.RequestBody.Content["application/json"].Schema.Ref)

	require.NotNil(t, doc.Components)
	assert.Equal(t, []string{"name"}, doc.Components.Schemas["openapi_test.newUser"].Required)
	assert.Contains(t, doc.Components.Schemas, "openapi_test.user")
}

func TestBuild_Parameters(t *testing.T) {
	t.Parallel()

	doc, err := openapi.New().FromEngine(newEngine(t))
	require.NoError(t, err)

	s := doc.Paths["/search"]["get"]
	require.NotNil(t, s)
	assert.Equal(t, "get_search", s.OperationID)
	assert.Equal(t, map[string]*openapi.ResponseObject{"200": {Description: "OK"}}, s.Responses)
	require.Len(t, s.Parameters, 3)
	assert.Equal(t, "q", s.Parameters[0].Name)
	assert.Equal(t, "query", s.Parameters[0].In)
	assert.True(t, s.Parameters[0].Required)
	assert.Equal(t, "search term", s.Parameters[0].Description)
	assert.Equal(t, "limit", s.Parameters[1].Name)
	assert.False(t, s.Parameters[1].Required)
	assert.InDelta(t, 100, *s.Parameters[1].Schema.Maximum, 0)
	assert.Equal(t, "X-Trace", s.Parameters[2].Name)
	assert.Equal(t, "header", s.Parameters[2].In)

	files := doc.Paths["/files/{path}"]["get"]
	require.NotNil(t, files)
	require.Len(t, files.Parameters, 1)
	assert.Contains(t, files.Parameters[0].Description, "remainder")

	posts := doc.Paths["/posts/{slug}/{page}"]["get"]
	require.NotNil(t, posts)
	require.Len(t, posts.Parameters, 2)
	assert.Equal(t, "^(?:"+compiler.PatternSlug+")$", posts.Parameters[0].Schema.Pattern)
	assert.True(t, posts.Parameters[1].Required)
	assert.Contains(t, posts.Parameters[1].Description, "Optional")
}

func TestBuild_CustomParamPattern(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.Patterns().RegisterType("sku", `[A-Z]{3}-\d+`, nil)
	e.Patterns().RegisterParamPattern("code", `\d{4}`)
	e.GET("/items/{id:sku}/{code}", ok)

	doc, err := openapi.New().FromEngine(e)
	require.NoError(t, err)

	params := doc.Paths["/items/{id}/{code}"]["get"].Parameters
	require.Len(t, params, 2)
	assert.Equal(t, `^(?:[A-Z]{3}-\d+)$`, params[0].Schema.Pattern)
	assert.Equal(t, `^(?:\d{4})$`, params[1].Schema.Pattern)
}

func TestHandler(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.GET("/openapi.json", openapi.Handler(e, openapi.WithExcludeNames("openapi"))).SetName("openapi")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var doc openapi.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.1.0", doc.OpenAPI)
	assert.Contains(t, doc.Paths, "/users/{id}")
	assert.NotContains(t, doc.Paths, "/openapi.json")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json?format=yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &fromYAML))
	assert.Equal(t, "3.1.0", fromYAML["openapi"])
	assert.Contains(t, fromYAML["paths"], "/users/{id}")
}
