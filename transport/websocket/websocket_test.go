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
package websocket_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingwill101/routed-sub001/router"
	"github.com/kingwill101/routed-sub001/transport/websocket"
)

func dial(t *testing.T, srv *httptest.Server, path string) *gws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNew_Echo(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/ws", websocket.New(websocket.Echo))
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	require.NoError(t, conn.WriteMessage(gws.TextMessage, []byte("hello")))
	mt, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, gws.TextMessage, mt)
	assert.Equal(t, "hello", string(msg))

	require.NoError(t, conn.WriteMessage(gws.CloseMessage,
		gws.FormatCloseMessage(gws.CloseNormalClosure, "")))
	_, _, err = conn.ReadMessage()
	assert.True(t, gws.IsCloseError(err, gws.CloseNormalClosure), "got %v", err)
}

func TestNew_PlainRequestGoesThroughErrorPipeline(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/ws", websocket.New(websocket.Echo))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "websocket")
}

func TestNew_HandlerErrorClosesWithInternalError(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/ws", websocket.New(func(*router.Context, *gws.Conn) error {
		return errors.New("boom")
	}))
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	_, _, err := conn.ReadMessage()
	assert.True(t, gws.IsCloseError(err, gws.CloseInternalServerErr), "got %v", err)
}

func TestNew_ForceCloseSendsGoingAway(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	started := make(chan struct{})
	e.GET("/ws", websocket.New(func(c *router.Context, conn *gws.Conn) error {
		close(started)
		return websocket.Echo(c, conn)
	}, websocket.WithPingInterval(0)))
	srv := httptest.NewServer(e)
	defer srv.Close()

	conn := dial(t, srv, "/ws")
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not start")
	}
	assert.Equal(t, 1, e.Lifecycle().Active())

	assert.Equal(t, 1, e.Lifecycle().ForceClose())

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, gws.IsCloseError(err, gws.CloseGoingAway), "got %v", err)
	assert.Eventually(t, func() bool { return e.Lifecycle().Active() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestNew_Subprotocols(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/ws", websocket.New(websocket.Echo,
		websocket.WithSubprotocols("v2.chat", "v1.chat"),
		websocket.WithResponseHeader(http.Header{"X-Session": {"abc"}}),
	))
	srv := httptest.NewServer(e)
	defer srv.Close()

	d := gws.Dialer{Subprotocols: []string{"v1.chat"}}
	conn, resp, err := d.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = resp.Body.Close()
	assert.Equal(t, "v1.chat", conn.Subprotocol())
	assert.Equal(t, "abc", resp.Header.Get("X-Session"))
}

func TestNew_OriginCheck(t *testing.T) {
	t.Parallel()

	e := router.MustNew()
	e.GET("/ws", websocket.New(websocket.Echo))
	srv := httptest.NewServer(e)
	defer srv.Close()

	_, resp, err := gws.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws",
		http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestIsUpgrade(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.False(t, websocket.IsUpgrade(req))
	req.Header.Set("Connection", "keep-alive, Upgrade")
	req.Header.Set("Upgrade", "websocket")
	assert.True(t, websocket.IsUpgrade(req))
}
