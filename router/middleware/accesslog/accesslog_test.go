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
package accesslog_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/router/middleware/accesslog"
	"github.com/kingwill101/routed-sub001/router/middleware/requestid"
)

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func setup(opts ...accesslog.Option) (*router.Engine, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := router.MustNew()
	e.Use(accesslog.New(append([]accesslog.Option{accesslog.WithLogger(logger)}, opts...)...))
	e.GET("/users/{id:int}", func(c *router.Context) { _ = c.String(http.StatusOK, "user") }).SetName("users.show")
	e.GET("/fail", func(c *router.Context) { c.Error(errors.New("db down")) })
	e.GET("/bad", func(c *router.Context) { c.Error(router.NewHTTPError(http.StatusBadRequest, "bad")) })
	e.GET("/healthz", func(c *router.Context) { c.NoContent() })
	return e, &buf
}

func get(e http.Handler, path string) {
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestAccessLog_Fields(t *testing.T) {
	t.Parallel()

	e, buf := setup()
	get(e, "/users/7")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	r := recs[0]
	assert.Equal(t, "access", r["msg"])
	assert.Equal(t, "INFO", r["level"])
	assert.Equal(t, http.MethodGet, r["method"])
	assert.Equal(t, "/users/7", r["path"])
	assert.Equal(t, "/users/{id:int}", r["route"])
	assert.Equal(t, "users.show", r["route_name"])
	assert.InDelta(t, http.StatusOK, r["status"], 0)
	assert.InDelta(t, 4, r["bytes"], 0)
	assert.Equal(t, "192.0.2.1", r["client_ip"])
}

func TestAccessLog_PendingErrorStatus(t *testing.T) {
	t.Parallel()

	e, buf := setup()
	get(e, "/fail")
	get(e, "/bad")
	get(e, "/missing")

	recs := records(t, buf)
	require.Len(t, recs, 3)
	assert.InDelta(t, http.StatusInternalServerError, recs[0]["status"], 0)
	assert.Equal(t, "ERROR", recs[0]["level"])
	assert.InDelta(t, http.StatusBadRequest, recs[1]["status"], 0)
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.InDelta(t, http.StatusNotFound, recs[2]["status"], 0)
	assert.Equal(t, router.PatternNotFound, recs[2]["route"])
}

func TestAccessLog_Exclusions(t *testing.T) {
	t.Parallel()

	e, buf := setup(accesslog.WithExcludePaths("/healthz"), accesslog.WithExcludePrefixes("/users/"))
	get(e, "/healthz")
	get(e, "/users/1")
	get(e, "/bad")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "/bad", recs[0]["path"])
}

func TestAccessLog_ErrorsOnly(t *testing.T) {
	t.Parallel()

	e, buf := setup(accesslog.WithErrorsOnly())
	get(e, "/users/1")
	get(e, "/bad")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "/bad", recs[0]["path"])
}

func TestAccessLog_ZeroSampleRateKeepsErrors(t *testing.T) {
	t.Parallel()

	e, buf := setup(accesslog.WithSampleRate(0))
	for range 5 {
		get(e, "/users/1")
	}
	get(e, "/fail")

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "/fail", recs[0]["path"])
}

func TestAccessLog_SlowRequests(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := router.MustNew()
	e.Use(accesslog.New(accesslog.WithLogger(logger), accesslog.WithErrorsOnly(), accesslog.WithSlowThreshold(time.Millisecond)))
	e.GET("/slow", func(c *router.Context) {
		time.Sleep(5 * time.Millisecond)
		c.NoContent()
	})

	get(e, "/slow")
	recs := records(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, true, recs[0]["slow"])
	assert.Equal(t, "WARN", recs[0]["level"])
}

func TestAccessLog_SamplingIsDeterministic(t *testing.T) {
	t.Parallel()

	count := func() int {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		e := router.MustNew()
		e.Use(requestid.New(), accesslog.New(accesslog.WithLogger(logger), accesslog.WithSampleRate(0.5)))
		e.GET("/", func(c *router.Context) { c.NoContent() })
		for i := range 50 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Request-ID", "req-"+string(rune('a'+i%26))+string(rune('a'+i/26)))
			e.ServeHTTP(httptest.NewRecorder(), req)
		}
		return len(records(t, &buf))
	}

	first := count()
	assert.Equal(t, first, count())
	assert.Less(t, first, 50)
	assert.Positive(t, first)
}
