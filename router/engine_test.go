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
package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

func TestEngine_TypedParamRoundTrip(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	var got any
	e.GET("/items/{id:int}", func(c *router.Context) {
		got = c.ParamValue("id")
		_ = c.String(http.StatusOK, c.Param("id"))
	})

	rec := serve(e, http.MethodGet, "/items/42", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
	assert.Equal(t, 42, got)

	rec = serve(e, http.MethodGet, "/items/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestEngine_ParamDecodingAndCasting(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	var (
		raw   string
		typed any
	)
	e.GET("/files/{*path}", func(c *router.Context) {
		raw = c.Param("path")
		_ = c.String(http.StatusOK, raw)
	})
	e.GET("/price/{amount:double}", func(c *router.Context) {
		typed = c.ParamValue("amount")
		c.NoContent()
	})

	rec := serve(e, http.MethodGet, "/files/a%20b/c.txt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a b/c.txt", raw)

	rec = serve(e, http.MethodGet, "/price/9.5", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.InDelta(t, 9.5, typed, 0)
}

func TestEngine_CustomTypeAndParamPattern(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.Patterns().RegisterType("hex", `[0-9a-f]+`, nil)
	e.Patterns().RegisterParamPattern("code", `[A-Z]{3}`)
	e.GET("/colors/{c:hex}", text("color"))
	e.GET("/airports/{code}", text("airport"))

	assert.Equal(t, "color", serve(e, http.MethodGet, "/colors/ff00aa", nil).Body.String())
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/colors/zz", nil).Code)
	assert.Equal(t, "airport", serve(e, http.MethodGet, "/airports/AMS", nil).Body.String())
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/airports/ams", nil).Code)
}

func TestEngine_OptionalParam(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	var seen []any
	e.GET("/users/{id?}", func(c *router.Context) {
		seen = append(seen, c.ParamValue("id"))
		c.NoContent()
	})

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/users/", nil).Code)
	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/users/7", nil).Code)
	assert.Equal(t, []any{nil, "7"}, seen)

	rec := serve(e, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/users/", rec.Header().Get("Location"))
	assert.Len(t, seen, 2)
}

func TestEngine_MethodNotAllowedVersusNotFound(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/x", text("x"))

	rec := serve(e, http.MethodPost, "/x", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS", rec.Header().Get("Allow"))

	rec = serve(e, http.MethodGet, "/y", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Allow"))
}

func TestEngine_MethodNotAllowedDisabled(t *testing.T) {
	t.Parallel()

	e := router.MustNew(router.WithMethodNotAllowed(false))
	e.GET("/x", text("x"))

	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodPost, "/x", nil).Code)
}

func TestEngine_AutoOptions(t *testing.T) {
	t.Parallel()

	var log []string
	e := router.MustNew()
	e.Use(trace(&log, "global"))
	e.GET("/x", text("x"))
	e.PUT("/x", text("x"))

	rec := serve(e, http.MethodOptions, "/x", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, HEAD, OPTIONS, PUT", rec.Header().Get("Allow"))
	assert.Equal(t, []string{"global"}, log)

	e2 := router.MustNew(router.WithAutoOptions(false))
	e2.GET("/x", text("x"))
	rec = serve(e2, http.MethodOptions, "/x", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestEngine_ExplicitOptionsRoute(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.OPTIONS("/x", text("custom"))
	e.GET("/x", text("x"))

	rec := serve(e, http.MethodOptions, "/x", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "custom", rec.Body.String())
}

func TestEngine_HeadUsesGetRoute(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/h", text("body"))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodHead, "/h", nil).Code)
}

func TestEngine_TrailingSlashRedirect(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/a/", text("a"))
	e.GET("/b", text("b"))

	rec := serve(e, http.MethodGet, "/a", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/a/", rec.Header().Get("Location"))

	rec = serve(e, http.MethodPost, "/a", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/a/", rec.Header().Get("Location"))

	rec = serve(e, http.MethodGet, "/b/?q=1", nil)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/b?q=1", rec.Header().Get("Location"))

	off := router.MustNew(router.WithRedirectTrailingSlash(false))
	off.GET("/a/", text("a"))
	assert.Equal(t, http.StatusNotFound, serve(off, http.MethodGet, "/a", nil).Code)
}

func TestEngine_CollapseSlashes(t *testing.T) {
	t.Parallel()

	e := router.MustNew(router.WithCollapseSlashes(true))
	e.GET("/a/b", text("ab"))

	assert.Equal(t, "ab", serve(e, http.MethodGet, "/a//b", nil).Body.String())
}

func TestEngine_FallbackSpecificity(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.Fallback(text("global"))
	e.Group("/admin").Fallback(text("admin"))
	e.GET("/admin/users", text("users"))

	assert.Equal(t, "users", serve(e, http.MethodGet, "/admin/users", nil).Body.String())
	assert.Equal(t, "admin", serve(e, http.MethodGet, "/admin/missing", nil).Body.String())
	assert.Equal(t, "admin", serve(e, http.MethodGet, "/admin", nil).Body.String())
	assert.Equal(t, "global", serve(e, http.MethodGet, "/elsewhere", nil).Body.String())
}

func TestEngine_FallbackForMethod(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.FallbackFor(http.MethodPost, text("post-fallback"))

	assert.Equal(t, "post-fallback", serve(e, http.MethodPost, "/nope", nil).Body.String())
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/nope", nil).Code)
}

func TestEngine_HeadUsesGetFallback(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.FallbackFor(http.MethodGet, func(c *router.Context) {
		c.Header("X-Fallback", "get")
		c.Status(http.StatusOK)
	})

	rec := serve(e, http.MethodHead, "/nope", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "get", rec.Header().Get("X-Fallback"))

	e.FallbackFor(http.MethodHead, func(c *router.Context) {
		c.Header("X-Fallback", "head")
		c.Status(http.StatusOK)
	})
	rec = serve(e, http.MethodHead, "/nope", nil)
	assert.Equal(t, "head", rec.Header().Get("X-Fallback"))

	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodPost, "/nope", nil).Code)
}

func TestEngine_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	var log []string
	e := router.MustNew()
	e.Use(trace(&log, "A"), trace(&log, "B"))
	e.GET("/o", trace(&log, "C"), func(c *router.Context) {
		log = append(log, "handler")
		c.NoContent()
	})

	serve(e, http.MethodGet, "/o", nil)
	assert.Equal(t, []string{"A", "B", "C", "handler"}, log)
}

func TestEngine_MountMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var log []string
	sub := router.NewRouter()
	sub.Use(trace(&log, "sub"))
	g := sub.Group("/g", trace(&log, "group"))
	g.GET("/r", trace(&log, "route"), func(c *router.Context) {
		log = append(log, "handler")
		c.NoContent()
	})

	e := router.MustNew()
	e.Use(trace(&log, "engine"))
	e.Mount("/api", sub, router.WithMiddleware(trace(&log, "mount")))

	rec := serve(e, http.MethodGet, "/api/g/r", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"engine", "mount", "sub", "group", "route", "handler"}, log)
}

func TestEngine_MountNotFoundAndNames(t *testing.T) {
	t.Parallel()

	sub := router.NewRouter()
	sub.GET("/users/{id:int}", text("user")).SetName("users.show")

	e := router.MustNew()
	e.Mount("/admin", sub,
		router.NamePrefix("admin."),
		router.WithNotFound(text("admin 404")),
	)

	assert.Equal(t, "user", serve(e, http.MethodGet, "/admin/users/3", nil).Body.String())
	assert.Equal(t, "admin 404", serve(e, http.MethodGet, "/admin/nothing", nil).Body.String())

	u, err := e.URL("admin.users.show", map[string]string{"id": "3"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/users/3", u)
}

func TestEngine_MountChangesInvalidateTable(t *testing.T) {
	t.Parallel()

	sub := router.NewRouter()
	e := router.MustNew()
	e.Mount("/m", sub)

	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/m/late", nil).Code)

	sub.GET("/late", text("late"))
	assert.Equal(t, "late", serve(e, http.MethodGet, "/m/late", nil).Body.String())
}

func TestEngine_MountCycle(t *testing.T) {
	t.Parallel()

	a := router.NewRouter()
	b := router.NewRouter()
	a.Mount("/b", b)
	b.Mount("/a", a)

	e := router.MustNew()
	e.Mount("/a", a)

	err := e.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrMountCycle)
}

func TestEngine_DuplicateRejection(t *testing.T) {
	t.Parallel()

	t.Run("method and path", func(t *testing.T) {
		t.Parallel()
		e := router.MustNew()
		e.GET("/d", text("1"))
		e.GET("/d", text("2"))

		err := e.Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, router.ErrDuplicateRoute)

		var be *router.BuildError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "/d", be.Path)

		assert.Equal(t, http.StatusInternalServerError, serve(e, http.MethodGet, "/d", nil).Code)
	})

	t.Run("name", func(t *testing.T) {
		t.Parallel()
		e := router.MustNew()
		e.GET("/n1", text("1")).SetName("same")
		e.GET("/n2", text("2")).SetName("same")

		assert.ErrorIs(t, e.Build(), router.ErrDuplicateName)
	})

	t.Run("all problems reported", func(t *testing.T) {
		t.Parallel()
		e := router.MustNew()
		e.GET("/d", text("1"))
		e.GET("/d", text("2"))
		e.GET("/bad/{", text("3"))

		err := e.Build()
		assert.ErrorIs(t, err, router.ErrDuplicateRoute)
		assert.ErrorIs(t, err, compiler.ErrInvalidTemplate)
	})

	t.Run("same path different methods", func(t *testing.T) {
		t.Parallel()
		e := router.MustNew()
		e.GET("/d", text("1"))
		e.POST("/d", text("2"))

		assert.NoError(t, e.Build())
	})
}

func TestEngine_DomainConstraint(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/c", text("api")).Domain(`^api\.`)
	e.GET("/{page}", text("page"))

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com/c", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "api", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "http://www.example.com/c", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "page", rec.Body.String())

	only := router.MustNew()
	only.GET("/c", text("api")).Domain(`^api\.`)
	req = httptest.NewRequest(http.MethodGet, "http://www.example.com/c", nil)
	rec = httptest.NewRecorder()
	only.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEngine_ParamAndPredicateConstraints(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/posts/{status}", text("status")).WhereEnum("status", "draft", "published")
	e.GET("/beta", text("beta")).When(func(r *http.Request) bool {
		return r.Header.Get("X-Beta") == "1"
	})

	assert.Equal(t, "status", serve(e, http.MethodGet, "/posts/draft", nil).Body.String())
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/posts/deleted", nil).Code)

	req := httptest.NewRequest(http.MethodGet, "/beta", nil)
	req.Header.Set("X-Beta", "1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "beta", rec.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/beta", nil).Code)
}

func TestEngine_InvalidConstraintIsBuildError(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/x/{id}", text("x")).Where("id", "(")

	assert.ErrorIs(t, e.Build(), route.ErrInvalidConstraint)
}

func TestEngine_StaticPathEquivalence(t *testing.T) {
	t.Parallel()

	templates := []string{"/", "/a", "/a/", "/a/b", "/a.b/c-d"}
	paths := []string{"/", "/a", "/a/", "/a/b", "/a/b/", "/a.b/c-d", "/axb/c-d", "/A"}

	e := router.MustNew(router.WithRedirectTrailingSlash(false))
	for _, tpl := range templates {
		e.GET(tpl, text(tpl))
	}

	for _, tpl := range templates {
		p, err := compiler.Compile(tpl, nil)
		require.NoError(t, err)
		require.True(t, p.Static)
		for _, path := range paths {
			rec := serve(e, http.MethodGet, path, nil)
			servedByTpl := rec.Code == http.StatusOK && rec.Body.String() == tpl
			assert.Equal(t, p.Match(path), servedByTpl, "template %q path %q", tpl, path)
		}
	}
}

func TestEngine_TrieMatchesLinearScan(t *testing.T) {
	t.Parallel()

	register := func(e *router.Engine) {
		e.GET("/users/me", text("me"))
		e.GET("/users/{id:int}", text("id"))
		e.GET("/users/{name}/posts", text("posts"))
		e.GET("/files/{*path}", text("files"))
		e.GET("/docs/{page?}", text("docs"))
		e.GET("/v{major:int}/status", text("status"))
		e.GET("/go/{target:url}", text("go"))
		e.Patterns().RegisterParamPattern("rest", `.+`)
		e.GET("/raw/{rest}", text("raw"))
	}
	linear := router.MustNew()
	register(linear)
	trie := router.MustNew(router.WithTrie(true))
	register(trie)

	paths := []string{
		"/users/me", "/users/7", "/users/bob", "/users/bob/posts", "/users/7/posts",
		"/files/", "/files/a/b/c", "/files", "/docs", "/docs/", "/docs/intro", "/v2/status", "/vx/status",
		"/go/https://example.com/x", "/raw/a", "/raw/a/b",
	}
	for _, p := range paths {
		l := serve(linear, http.MethodGet, p, nil)
		r := serve(trie, http.MethodGet, p, nil)
		assert.Equal(t, l.Code, r.Code, p)
		assert.Equal(t, l.Body.String(), r.Body.String(), p)
	}
	assert.Equal(t, "go", serve(trie, http.MethodGet, "/go/https://example.com/x", nil).Body.String())
	assert.Equal(t, "raw", serve(trie, http.MethodGet, "/raw/a/b", nil).Body.String())
}

func TestEngine_TriePrefersLiteralSegments(t *testing.T) {
	t.Parallel()

	e := router.MustNew(router.WithTrie(true))
	e.GET("/users/{id}/{action}", text("action"))
	e.GET("/users/{id}/edit", text("edit"))

	assert.Equal(t, "edit", serve(e, http.MethodGet, "/users/5/edit", nil).Body.String())
	assert.Equal(t, "action", serve(e, http.MethodGet, "/users/5/view", nil).Body.String())

	linear := router.MustNew()
	linear.GET("/users/{id}/{action}", text("action"))
	linear.GET("/users/{id}/edit", text("edit"))
	assert.Equal(t, "action", serve(linear, http.MethodGet, "/users/5/edit", nil).Body.String())
}

func TestEngine_AnyMethodRoute(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.Handle(router.AnyMethod, "/any", text("any"))
	e.Handle("PURGE", "/cache", text("purged"))

	assert.Equal(t, "any", serve(e, http.MethodDelete, "/any", nil).Body.String())
	assert.Equal(t, "purged", serve(e, "PURGE", "/cache", nil).Body.String())
}

func TestEngine_URL(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/users/{id:int}", text("u")).SetName("users.show")
	e.GET("/docs/{page?}", text("d")).SetName("docs")
	e.GET("/files/{*path}", text("f")).SetName("files")
	e.Group("/g").SetNamePrefix("g.").GET("/a", text("a")).SetName("a")

	cases := []struct {
		name   string
		params map[string]string
		want   string
	}{
		{"users.show", map[string]string{"id": "7"}, "/users/7"},
		{"docs", nil, "/docs/"},
		{"docs", map[string]string{"page": "intro"}, "/docs/intro"},
		{"files", map[string]string{"path": "a/b c"}, "/files/a/b c"},
		{"g.a", nil, "/g/a"},
	}
	for _, tc := range cases {
		got, err := e.URL(tc.name, tc.params)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}

	_, err := e.URL("missing", nil)
	assert.ErrorIs(t, err, router.ErrRouteNotFound)

	_, err = e.URL("users.show", nil)
	assert.Error(t, err)
}

func TestEngine_Routes(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.Registry().RegisterHandler("noop", func(c *router.Context) { c.Next() })
	e.GET("/static", text("s"))
	e.GET("/p/{id:int}", text("p")).SetName("p").UseRef("noop")
	e.Fallback(text("f"))

	infos, err := e.Routes()
	require.NoError(t, err)
	require.Len(t, infos, 3)

	assert.Equal(t, route.KindStatic, infos[0].Kind)
	assert.False(t, infos[0].Dynamic)

	assert.Equal(t, route.KindPattern, infos[1].Kind)
	assert.Equal(t, "p", infos[1].Name)
	assert.Equal(t, []string{"id"}, infos[1].Params)
	assert.True(t, infos[1].Dynamic)
	assert.Equal(t, 1, infos[1].Middleware)

	assert.Equal(t, route.KindFallback, infos[2].Kind)
	assert.Equal(t, router.AnyMethod, infos[2].Method)
	assert.True(t, infos[2].Dynamic)
}

func TestEngine_RoutesMetadata(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/posts/{slug:slug}/{page:int?}", text("p")).
		SetDescription("Lists a page of posts.").
		SetTags("posts", "public").
		SetSchema("response", "post")
	e.GET("/files/{*rest}", text("f"))

	infos, err := e.Routes()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "Lists a page of posts.", infos[0].Description)
	assert.Equal(t, []string{"posts", "public"}, infos[0].Tags)
	assert.Equal(t, map[string]any{"response": "post"}, infos[0].Schema)
	assert.Equal(t, []route.ParamSpec{
		{Name: "slug", Type: "slug"},
		{Name: "page", Type: "int", Optional: true},
	}, infos[0].ParamSpecs)

	assert.Equal(t, []route.ParamSpec{{Name: "rest", Wildcard: true}}, infos[1].ParamSpecs)
	assert.Empty(t, infos[1].Tags)
}

func TestEngine_RouteKeysOnContext(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	var keys map[string]string
	e.GET("/k/{id}", func(c *router.Context) {
		keys = map[string]string{
			router.KeyRouteName:   c.GetString(router.KeyRouteName),
			router.KeyRoutePath:   c.GetString(router.KeyRoutePath),
			router.KeyRouteMethod: c.GetString(router.KeyRouteMethod),
			router.KeyRouteType:   c.GetString(router.KeyRouteType),
		}
		c.NoContent()
	}).SetName("k")

	serve(e, http.MethodGet, "/k/1", nil)
	assert.Equal(t, map[string]string{
		router.KeyRouteName:   "k",
		router.KeyRoutePath:   "/k/{id}",
		router.KeyRouteMethod: http.MethodGet,
		router.KeyRouteType:   "pattern",
	}, keys)
}

func TestEngine_RouteChangeAfterBuild(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	r := e.GET("/late", text("late"))
	require.NoError(t, e.Build())

	r.Domain(`^never$`)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/late", nil).Code)
}

func TestEngine_NoHandlerPanics(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	assert.Panics(t, func() { e.GET("/x") })
}

func TestEngine_InvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := router.New(router.WithMaxBodySize(-1))
	require.Error(t, err)

	_, err = router.New(router.WithTrustedProxies("not-a-cidr"))
	require.Error(t, err)
}

func TestEngine_ClientIP(t *testing.T) {
	t.Parallel()

	e := router.MustNew(router.WithTrustedProxies("10.0.0.0/8"))
	e.GET("/ip", func(c *router.Context) {
		_ = c.String(http.StatusOK, c.ClientIP())
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "10.1.2.3:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.7")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "203.0.113.9", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "198.51.100.1", rec.Body.String())
}
