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
	"bufio"
	"net"
	"net/http"
)

// ResponseInfo exposes what was written to a response.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}

// responseWriter records the status and size of a response and forwards
// optional interfaces of the wrapped writer.
type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
}

func (w *responseWriter) reset(rw http.ResponseWriter) {
	w.ResponseWriter = rw
	w.status = 0
	w.size = 0
	w.written = false
}

// WriteHeader sends the status once; later calls are ignored.
func (w *responseWriter) WriteHeader(code int) {
	if w.written {
		return
	}
	w.status = code
	w.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// StatusCode returns the status sent, or 200 once a body was written
// without an explicit status. Zero means nothing was written.
func (w *responseWriter) StatusCode() int {
	return w.status
}

// Size returns the number of body bytes written.
func (w *responseWriter) Size() int64 {
	return w.size
}

// Written reports whether the status has been sent.
func (w *responseWriter) Written() bool {
	return w.written
}

func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.written {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, ErrResponseWriterNotHijacker
	}
	conn, rw, err := hj.Hijack()
	if err == nil {
		w.written = true
	}
	return conn, rw, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
