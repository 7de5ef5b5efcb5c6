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
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[37m"
	colorWhite  = "\033[97m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

var consoleBuilderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// consoleHandler writes one colored line per record. Meant for local
// development; use [JSONHandler] for log aggregation.
type consoleHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	output io.Writer
	attrs  []slog.Attr
	prefix string
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *consoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &consoleHandler{opts: opts, mu: &sync.Mutex{}, output: w}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	b := consoleBuilderPool.Get().(*strings.Builder)
	b.Reset()
	defer consoleBuilderPool.Put(b)

	b.WriteString(colorDim)
	b.WriteString(r.Time.Format("15:04:05.000"))
	b.WriteString(colorReset)
	b.WriteByte(' ')

	b.WriteString(levelColor(r.Level))
	b.WriteString(colorBold)
	fmt.Fprintf(b, "%-5s", r.Level.String())
	b.WriteString(colorReset)
	b.WriteByte(' ')

	b.WriteString(colorWhite)
	b.WriteString(r.Message)
	b.WriteString(colorReset)

	for _, a := range h.attrs {
		h.appendAttr(b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(b, h.prefix, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		if src := recordSource(r.PC); src != "" {
			b.WriteString(" " + colorGray + "(" + src + ")" + colorReset)
		}
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.output, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	default:
		return colorBlue
	}
}

func (h *consoleHandler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
	}
	if a.Equal(slog.Attr{}) {
		return
	}
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, prefix+a.Key+".", ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')

	switch a.Value.Kind() {
	case slog.KindString:
		s := a.Value.String()
		if strings.ContainsAny(s, " \t\n\"") {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	case slog.KindDuration:
		b.WriteString(a.Value.Duration().String())
	case slog.KindTime:
		b.WriteString(a.Value.Time().Format(time.RFC3339))
	case slog.KindFloat64:
		b.WriteString(strconv.FormatFloat(a.Value.Float64(), 'f', 2, 64))
	default:
		b.WriteString(a.Value.String())
	}
}

func recordSource(pc uintptr) string {
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return ""
	}
	return filepath.Base(f.File) + ":" + strconv.Itoa(f.Line)
}
