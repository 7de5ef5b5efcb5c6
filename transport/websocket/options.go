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
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the upgrade handler.
type Option func(*config)

type config struct {
	upgrader       websocket.Upgrader
	responseHeader http.Header
	readLimit      int64
	pingInterval   time.Duration
	writeTimeout   time.Duration
}

func defaultConfig() *config {
	return &config{
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
		},
		readLimit:    DefaultReadLimit,
		pingInterval: DefaultPingInterval,
		writeTimeout: 10 * time.Second,
	}
}

// WithBufferSizes sets the read and write buffer sizes.
func WithBufferSizes(read, write int) Option {
	return func(c *config) {
		c.upgrader.ReadBufferSize = read
		c.upgrader.WriteBufferSize = write
	}
}

// WithHandshakeTimeout bounds the upgrade handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *config) { c.upgrader.HandshakeTimeout = d }
}

// WithOriginCheck replaces the same-origin check.
func WithOriginCheck(fn func(*http.Request) bool) Option {
	return func(c *config) { c.upgrader.CheckOrigin = fn }
}

// WithAllowAnyOrigin accepts cross-origin upgrades.
func WithAllowAnyOrigin() Option {
	return WithOriginCheck(func(*http.Request) bool { return true })
}

// WithSubprotocols lists the subprotocols the server speaks, in order
// of preference.
func WithSubprotocols(protocols ...string) Option {
	return func(c *config) { c.upgrader.Subprotocols = protocols }
}

// WithCompression negotiates per-message deflate.
func WithCompression() Option {
	return func(c *config) { c.upgrader.EnableCompression = true }
}

// WithResponseHeader adds headers to the 101 response.
func WithResponseHeader(h http.Header) Option {
	return func(c *config) { c.responseHeader = h }
}

// WithReadLimit caps inbound message size in bytes.
func WithReadLimit(n int64) Option {
	return func(c *config) { c.readLimit = n }
}

// WithPingInterval sets the keepalive interval. Zero disables pings and
// read deadlines.
func WithPingInterval(d time.Duration) Option {
	return func(c *config) { c.pingInterval = d }
}

// WithWriteTimeout bounds control frame writes.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = d }
}
