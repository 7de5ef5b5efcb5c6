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
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kingwill101/routed-sub001/router"
)

const (
	// DefaultPingInterval is how often idle connections are pinged.
	DefaultPingInterval = 30 * time.Second

	// DefaultReadLimit caps a single inbound message.
	DefaultReadLimit = 1 << 20

	closeWait = time.Second
)

// Handler serves one upgraded connection. The connection is closed when
// it returns. A nil error closes with 1000, any other error with 1011.
type Handler func(c *router.Context, conn *websocket.Conn) error

// IsUpgrade reports whether req asks for a WebSocket upgrade.
func IsUpgrade(req *http.Request) bool {
	return websocket.IsWebSocketUpgrade(req)
}

// New returns a route handler that upgrades the request and hands the
// connection to h. The request is detached from the engine once the
// handshake succeeds, so nothing else writes to the response. A failed
// handshake is reported through the error pipeline.
func New(h Handler, opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		u := cfg.upgrader
		u.Error = func(_ http.ResponseWriter, _ *http.Request, status int, reason error) {
			c.AbortWithError(router.NewHTTPError(status, reason.Error()))
		}

		conn, err := u.Upgrade(c.Response, c.Request, cfg.responseHeader)
		if err != nil {
			return
		}
		c.Detach()
		serve(c, conn, h, cfg)
	}
}

func serve(c *router.Context, conn *websocket.Conn, h Handler, cfg *config) {
	ctx, cancel := context.WithCancel(c.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		_ = conn.Close()
	}()

	conn.SetReadLimit(cfg.readLimit)
	if cfg.pingInterval > 0 {
		deadline := cfg.pingInterval * 2
		_ = conn.SetReadDeadline(time.Now().Add(deadline))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(deadline))
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(cfg.pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(cfg.writeTimeout)); err != nil {
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// A canceled request context means the engine is force-closing.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if c.Context().Err() != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(closeWait))
			_ = conn.Close()
		}
	}()

	err := h(c, conn)
	code, text := websocket.CloseNormalClosure, ""
	switch {
	case err == nil, websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
	case c.Context().Err() != nil:
		return
	default:
		code, text = websocket.CloseInternalServerErr, "internal error"
		c.Logger().Warn("websocket handler failed", "error", err, "path", c.Request.URL.Path)
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text), time.Now().Add(closeWait))
}

// Echo writes every message back to the sender until the peer closes.
func Echo(_ *router.Context, conn *websocket.Conn) error {
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if err := conn.WriteMessage(mt, msg); err != nil {
			return err
		}
	}
}
