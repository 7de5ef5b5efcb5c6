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
package server

import (
	"bytes"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/http2"

	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/router"
)

func withSignalChannel(ch <-chan os.Signal) Option {
	return func(c *config) { c.sigCh = ch }
}

type running struct {
	srv  *Server
	errc chan error
	url  string
}

func start(t *testing.T, ctx context.Context, e *router.Engine, opts ...Option) *running {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv, err := New(e, append([]Option{WithSignalHandling(false)}, opts...)...)
	require.NoError(t, err)

	r := &running{srv: srv, errc: make(chan error, 1)}
	go func() { r.errc <- srv.Serve(ctx, ln) }()

	select {
	case <-srv.Ready():
	case err := <-r.errc:
		t.Fatalf("serve returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready")
	}
	r.url = "http://" + srv.Addr().String()
	return r
}

func (r *running) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.errc:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
		return nil
	}
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "empty address", opts: []Option{WithAddr("")}},
		{name: "certificate without key", opts: []Option{WithTLS("cert.pem", "")}},
		{name: "h2c with TLS", opts: []Option{WithH2C(true), WithTLS("cert.pem", "key.pem")}},
		{name: "negative grace", opts: []Option{WithShutdownGrace(-time.Second)}},
		{name: "negative header bytes", opts: []Option{WithMaxHeaderBytes(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(e, tt.opts...)
			require.Error(t, err)
		})
	}

	_, err := New(nil)
	require.Error(t, err)
	assert.Panics(t, func() { MustNew(e, WithAddr("")) })
}

func TestServer_ServesAndStopsOnContext(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/users/{id:int}", func(c *router.Context) {
		_ = c.String(http.StatusOK, "user "+c.Param("id"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, e, WithExitCode(3))

	status, body := get(t, r.url+"/users/7")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user 7", body)
	assert.Equal(t, "HTTP", r.srv.Protocol())

	cancel()
	err := r.wait(t)
	require.NoError(t, err)
	assert.Equal(t, 3, r.srv.ExitCode(err))
	assert.Equal(t, lifecycle.StateDraining, e.Lifecycle().State())
}

func TestServer_RefusesToStartOnBuildError(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	h := func(c *router.Context) { c.NoContent() }
	e.GET("/a", h)
	e.GET("/a", h)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := MustNew(e, WithSignalHandling(false))
	err = srv.Serve(context.Background(), ln)
	require.ErrorIs(t, err, router.ErrDuplicateRoute)
	assert.Equal(t, 1, srv.ExitCode(err))
	assert.Nil(t, srv.Addr())
}

func TestServer_DrainsInFlightRequests(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})

	e := router.MustNew()
	e.GET("/slow", func(c *router.Context) {
		close(entered)
		<-release
		_ = c.String(http.StatusOK, "done")
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, e, WithShutdownGrace(5*time.Second))

	type result struct {
		status int
		body   string
	}
	got := make(chan result, 1)
	go func() {
		resp, err := http.Get(r.url + "/slow")
		if err != nil {
			got <- result{}
			return
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		got <- result{resp.StatusCode, string(b)}
	}()

	<-entered
	cancel()

	assert.Eventually(t, func() bool { return e.Lifecycle().Draining() }, time.Second, 5*time.Millisecond)
	select {
	case err := <-r.errc:
		t.Fatalf("stopped before the request finished: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, r.wait(t))
	res := <-got
	assert.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, "done", res.body)
}

func TestServer_GraceExpiryForcesClose(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	e := router.MustNew()
	e.GET("/stuck", func(c *router.Context) {
		close(entered)
		<-c.Request.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, e, WithShutdownGrace(50*time.Millisecond))

	go func() {
		if resp, err := http.Get(r.url + "/stuck"); err == nil {
			resp.Body.Close()
		}
	}()
	<-entered
	cancel()

	err := r.wait(t)
	require.ErrorIs(t, err, lifecycle.ErrGraceExpired)
	assert.Equal(t, 0, r.srv.ExitCode(err))
	assert.Equal(t, lifecycle.StateClosed, e.Lifecycle().State())
}

func TestServer_SecondSignalForcesClose(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	cancelled := make(chan struct{})
	e := router.MustNew()
	e.GET("/stuck", func(c *router.Context) {
		close(entered)
		<-c.Request.Context().Done()
		close(cancelled)
	})

	sigs := make(chan os.Signal, 2)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := MustNew(e, withSignalChannel(sigs), WithShutdownGrace(time.Minute))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(context.Background(), ln) }()
	<-srv.Ready()

	go func() {
		if resp, err := http.Get("http://" + srv.Addr().String() + "/stuck"); err == nil {
			resp.Body.Close()
		}
	}()
	<-entered

	sigs <- syscall.SIGTERM
	assert.Eventually(t, func() bool { return e.Lifecycle().Draining() }, time.Second, 5*time.Millisecond)
	sigs <- syscall.SIGINT

	select {
	case err := <-errc:
		require.ErrorIs(t, err, ErrForcedClose)
		assert.Equal(t, 0, srv.ExitCode(err))
	case <-time.After(5 * time.Second):
		t.Fatal("second signal did not force close")
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("handler context not cancelled")
	}
}

func TestServer_DrainingRejectsNewRequests(t *testing.T) {
	t.Parallel()

	entered := make(chan struct{})
	release := make(chan struct{})
	e := router.MustNew(router.WithHealthPaths("/healthz"), router.WithRetryAfter(9))
	e.GET("/slow", func(c *router.Context) {
		close(entered)
		<-release
		c.NoContent()
	})
	e.GET("/other", func(c *router.Context) { c.NoContent() })

	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, e, WithShutdownGrace(5*time.Second))

	go func() {
		if resp, err := http.Get(r.url + "/slow"); err == nil {
			resp.Body.Close()
		}
	}()
	<-entered
	cancel()
	require.Eventually(t, func() bool { return e.Lifecycle().Draining() }, time.Second, 5*time.Millisecond)

	// The listener is closed; exercise the engine directly.
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "9", rec.Header().Get("Retry-After"))
	assert.Equal(t, "close", rec.Header().Get("Connection"))

	close(release)
	require.NoError(t, r.wait(t))
}

func TestServer_H2C(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/proto", func(c *router.Context) { _ = c.String(http.StatusOK, c.Request.Proto) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := start(t, ctx, e, WithH2C(true))
	assert.Equal(t, "h2c", r.srv.Protocol())

	client := &http.Client{Transport: &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, addr)
		},
	}}
	resp, err := client.Get(r.url + "/proto")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, 2, resp.ProtoMajor)
	assert.Equal(t, "HTTP/2.0", string(body))

	status, body2 := get(t, r.url+"/proto")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "HTTP/1.1", body2)
}

func TestServer_Banner(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/users/{id}", func(c *router.Context) { c.NoContent() }).SetName("users.show")

	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	r := start(t, ctx, e,
		WithBanner(true),
		WithBannerOutput(&buf),
		WithServiceInfo("inventory", "v2.1.0"),
	)
	cancel()
	require.NoError(t, r.wait(t))

	out := buf.String()
	assert.Contains(t, out, "inventory")
	assert.Contains(t, out, "v2.1.0")
	assert.Contains(t, out, "http://127.0.0.1:")
	assert.Contains(t, out, "/users/{id}")
	assert.Contains(t, out, "users.show")
}
