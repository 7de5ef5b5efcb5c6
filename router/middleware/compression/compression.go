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
// Package compression provides middleware that encodes response bodies
// with Brotli or gzip according to the client's Accept-Encoding header.
package compression

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"github.com/kingwill101/routed-sub001/router"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

// New returns a middleware that compresses response bodies.
//
// Brotli is preferred when the client rates it at least as high as gzip.
// Responses with status 204, 206 or 304, an existing Content-Encoding, or
// a streaming or already compressed content type pass through unchanged,
// as do protocol upgrades.
//
//	e.Use(compression.New(
//	    compression.WithBrotliLevel(5),
//	    compression.WithExcludePaths("/metrics"),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	gzipPool := &sync.Pool{New: func() any {
		w, err := gzip.NewWriterLevel(io.Discard, cfg.gzipLevel)
		if err != nil {
			w = gzip.NewWriter(io.Discard)
		}
		return w
	}}
	brotliPool := &sync.Pool{New: func() any {
		return brotli.NewWriterLevel(io.Discard, cfg.brotliLevel)
	}}

	return func(c *router.Context) {
		if cfg.filter.Excluded(c.Request.URL.Path) || c.Request.Header.Get("Upgrade") != "" {
			c.Next()
			return
		}
		c.Response.Header().Add("Vary", "Accept-Encoding")

		encoding := chooseEncoding(c.Request.Header.Get("Accept-Encoding"), cfg)
		if encoding == "" {
			c.Next()
			return
		}

		pool := gzipPool
		if encoding == encodingBrotli {
			pool = brotliPool
		}
		cw := &compressWriter{
			encoding: encoding,
			pool:     pool,
			excludes: cfg.excludeContentTypes,
		}
		restore := c.WrapWriter(func(w http.ResponseWriter) http.ResponseWriter {
			cw.ResponseWriter = w
			return cw
		})

		c.Next()

		restore()
		if err := cw.Close(); err != nil {
			logger := cfg.logger
			if logger == nil {
				logger = c.Logger()
			}
			logger.Warn("compression finalization failed", "error", err)
		}
	}
}

type encoder interface {
	io.WriteCloser
	Flush() error
	Reset(io.Writer)
}

// compressWriter holds the status until the first body write so the
// decision can use the final headers.
type compressWriter struct {
	http.ResponseWriter
	encoding string
	pool     *sync.Pool
	excludes []string

	enc      encoder
	status   int
	decided  bool
	compress bool
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.decided {
		return
	}
	if code < http.StatusOK || code == http.StatusSwitchingProtocols {
		cw.ResponseWriter.WriteHeader(code)
		return
	}
	cw.status = code
	if skipStatus(code) {
		cw.decide(nil)
	}
}

func (cw *compressWriter) Write(p []byte) (int, error) {
	if !cw.decided {
		cw.decide(p)
	}
	if cw.compress {
		return cw.enc.Write(p)
	}
	return cw.ResponseWriter.Write(p)
}

func (cw *compressWriter) Flush() {
	if !cw.decided {
		cw.decide(nil)
	}
	if cw.compress {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// decide picks compressed or identity output and sends the header.
func (cw *compressWriter) decide(first []byte) {
	cw.decided = true
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	h := cw.ResponseWriter.Header()
	if h.Get("Content-Type") == "" && len(first) > 0 {
		h.Set("Content-Type", http.DetectContentType(first))
	}
	cw.compress = !skipStatus(cw.status) &&
		h.Get("Content-Encoding") == "" &&
		!skipContentType(h.Get("Content-Type"), cw.excludes)
	if cw.compress {
		h.Del("Content-Length")
		h.Set("Content-Encoding", cw.encoding)
		cw.enc = cw.pool.Get().(encoder)
		cw.enc.Reset(cw.ResponseWriter)
	}
	cw.ResponseWriter.WriteHeader(cw.status)
}

// Close terminates the encoded stream. A response that set a status but
// wrote no body is sent as is.
func (cw *compressWriter) Close() error {
	if !cw.decided {
		if cw.status == 0 {
			return nil
		}
		cw.decided = true
		cw.ResponseWriter.WriteHeader(cw.status)
		return nil
	}
	if !cw.compress {
		return nil
	}
	err := cw.enc.Close()
	cw.enc.Reset(io.Discard)
	cw.pool.Put(cw.enc)
	cw.enc = nil
	return err
}

func skipStatus(code int) bool {
	return code == http.StatusNoContent ||
		code == http.StatusNotModified ||
		code == http.StatusPartialContent
}

func skipContentType(ct string, excludes []string) bool {
	ct = strings.ToLower(ct)
	for _, prefix := range alwaysSkip {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	for _, ex := range excludes {
		if strings.HasPrefix(ct, ex) {
			return true
		}
	}
	return false
}

var alwaysSkip = []string{
	"text/event-stream",
	"application/grpc",
	"application/octet-stream",
	"application/zip",
	"application/gzip",
	"image/",
	"video/",
	"audio/",
}

// chooseEncoding negotiates per RFC 9110 quality values. A "*" entry
// rates every encoding not listed explicitly.
func chooseEncoding(header string, cfg *config) string {
	if header == "" {
		return ""
	}
	br, gz := qValue(header, encodingBrotli), qValue(header, encodingGzip)
	switch {
	case cfg.brotli && br > 0 && br >= gz:
		return encodingBrotli
	case cfg.gzip && gz > 0:
		return encodingGzip
	case cfg.brotli && br > 0:
		return encodingBrotli
	}
	return ""
}

// qValue returns the quality for coding, 0 when absent or refused.
func qValue(header, coding string) float64 {
	wildcard := 0.0
	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name != coding && name != "*" {
			continue
		}
		q := 1.0
		if v, ok := strings.CutPrefix(strings.TrimSpace(params), "q="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				q = f
			}
		}
		if name == coding {
			return q
		}
		wildcard = q
	}
	return wildcard
}
