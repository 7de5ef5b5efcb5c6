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
package bridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedProtocol is returned for a protocol other than
	// "1.0", "1.1", "2" or "3".
	ErrUnsupportedProtocol = errors.New("bridge: unsupported protocol")

	// ErrInvalidRequest is returned when the request line cannot be parsed.
	ErrInvalidRequest = errors.New("bridge: invalid request")
)

// Request is one request as decoded from the bridge. Path and Query are
// in their escaped wire form.
type Request struct {
	Method    string
	Scheme    string
	Authority string
	Path      string
	Query     string
	// Protocol is "1.0", "1.1", "2" or "3". Empty means "1.1".
	Protocol   string
	Header     http.Header
	Body       io.ReadCloser
	RemoteAddr string
}

// Sink receives the response for one request.
type Sink interface {
	// Start sends the status line and headers. It is called once.
	Start(status int, header http.Header) error
	// Write sends a body chunk.
	Write(p []byte) (int, error)
	// Close ends the response.
	Close() error
	// DetachSocket hands over the raw connection, for protocol upgrades.
	// Nothing else is sent through the sink afterwards.
	DetachSocket() (net.Conn, error)
}

// Flusher is implemented by sinks that buffer body chunks.
type Flusher interface {
	Flush() error
}

// Adapter feeds bridge requests into an http.Handler, normally the
// engine, so they take the same dispatch path as native connections.
type Adapter struct {
	handler http.Handler
	logger  *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger receives protocol errors.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter wraps h.
func NewAdapter(h http.Handler, opts ...Option) *Adapter {
	a := &Adapter{handler: h, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Serve dispatches req and writes the response to sink. ctx becomes the
// request context. A request that cannot be converted is answered with
// 400 or 505 and the conversion error is returned. Unless the socket was
// detached, the sink is closed before Serve returns.
func (a *Adapter) Serve(ctx context.Context, req *Request, sink Sink) error {
	w := &responseWriter{sink: sink, header: make(http.Header)}

	hr, err := NewHTTPRequest(ctx, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrUnsupportedProtocol) {
			status = http.StatusHTTPVersionNotSupported
		}
		a.logger.Warn("bridge request rejected", "error", err, "status", status)
		w.WriteHeader(status)
		w.finish()
		return errors.Join(err, w.err, sink.Close())
	}

	a.handler.ServeHTTP(w, hr)

	if w.detached {
		return nil
	}
	w.finish()
	if err := errors.Join(w.err, sink.Close()); err != nil {
		return fmt.Errorf("bridge: write response: %w", err)
	}
	return nil
}

// NewHTTPRequest converts a bridge request into a server-side
// *http.Request.
func NewHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	major, minor, err := parseProtocol(req.Protocol)
	if err != nil {
		return nil, err
	}
	if req.Method == "" || (!strings.HasPrefix(req.Path, "/") && req.Path != "*") {
		return nil, fmt.Errorf("%w: %s %q", ErrInvalidRequest, req.Method, req.Path)
	}

	requestURI := req.Path
	if req.Query != "" {
		requestURI += "?" + req.Query
	}
	u, err := url.ParseRequestURI(requestURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	header := req.Header
	if header == nil {
		header = make(http.Header)
	}
	body := req.Body
	if body == nil {
		body = http.NoBody
	}

	hr := (&http.Request{
		Method:     req.Method,
		URL:        u,
		Proto:      protoString(major, minor),
		ProtoMajor: major,
		ProtoMinor: minor,
		Header:     header,
		Body:       body,
		Host:       req.Authority,
		RequestURI: requestURI,
		RemoteAddr: req.RemoteAddr,
	}).WithContext(ctx)

	switch cl := header.Get("Content-Length"); {
	case cl != "":
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: bad Content-Length %q", ErrInvalidRequest, cl)
		}
		hr.ContentLength = n
	case body == http.NoBody:
		hr.ContentLength = 0
	default:
		hr.ContentLength = -1
	}

	if strings.EqualFold(req.Scheme, "https") || strings.EqualFold(req.Scheme, "wss") {
		// TLS ended at the bridge peer.
		hr.TLS = &tls.ConnectionState{HandshakeComplete: true, ServerName: hostOnly(req.Authority)}
	}
	return hr, nil
}

// IsWebSocketUpgrade reports whether req asks for a WebSocket upgrade:
// Connection lists "upgrade" and Upgrade lists "websocket".
func IsWebSocketUpgrade(req *Request) bool {
	return headerHasToken(req.Header, "Connection", "upgrade") &&
		headerHasToken(req.Header, "Upgrade", "websocket")
}

func headerHasToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for part := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

func parseProtocol(p string) (major, minor int, err error) {
	switch p {
	case "", "1.1":
		return 1, 1, nil
	case "1.0":
		return 1, 0, nil
	case "2":
		return 2, 0, nil
	case "3":
		return 3, 0, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, p)
}

func protoString(major, minor int) string {
	return "HTTP/" + strconv.Itoa(major) + "." + strconv.Itoa(minor)
}

func hostOnly(authority string) string {
	if host, _, err := net.SplitHostPort(authority); err == nil {
		return host
	}
	return authority
}
