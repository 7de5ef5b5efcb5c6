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
	"bufio"
	"errors"
	"net"
	"net/http"
)

// ErrDetached is returned by writes after the socket was handed over.
var ErrDetached = errors.New("bridge: socket detached")

// responseWriter adapts a Sink to http.ResponseWriter, http.Flusher and
// http.Hijacker. Like net/http it sends the header lazily, on the first
// body write, flush or at the end of the request, so the content type
// can still be sniffed after WriteHeader.
type responseWriter struct {
	sink        Sink
	header      http.Header
	status      int
	wroteHeader bool
	started     bool
	detached    bool
	err         error
}

func (w *responseWriter) Header() http.Header {
	return w.header
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wroteHeader || w.detached {
		return
	}
	// Interim responses are not forwarded.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		return
	}
	w.wroteHeader = true
	w.status = code
}

// start sends the header once. p is the first body chunk, if any.
func (w *responseWriter) start(p []byte) {
	if w.started {
		return
	}
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if len(p) > 0 && w.header.Get("Content-Type") == "" && w.header.Get("Content-Encoding") == "" {
		w.header.Set("Content-Type", http.DetectContentType(p))
	}
	w.started = true
	w.err = w.sink.Start(w.status, w.header.Clone())
}

func (w *responseWriter) Write(p []byte) (int, error) {
	if w.detached {
		return 0, ErrDetached
	}
	w.start(p)
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.sink.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (w *responseWriter) Flush() {
	if w.detached {
		return
	}
	w.start(nil)
	if f, ok := w.sink.(Flusher); ok && w.err == nil {
		w.err = f.Flush()
	}
}

// finish sends a header-only response if nothing was written.
func (w *responseWriter) finish() {
	if !w.detached {
		w.start(nil)
	}
}

// Hijack detaches the bridge socket. It fails once the response started.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if w.started {
		return nil, nil, errors.New("bridge: hijack after response started")
	}
	if w.detached {
		return nil, nil, ErrDetached
	}
	conn, err := w.sink.DetachSocket()
	if err != nil {
		return nil, nil, err
	}
	w.detached = true
	return conn, bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)), nil
}
