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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
	// ConsoleHandler outputs human-readable colored logs.
	ConsoleHandler HandlerType = "console"
)

// Level represents log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// redacted keys are replaced before any handler sees them.
var redacted = map[string]struct{}{
	"password":      {},
	"token":         {},
	"secret":        {},
	"api_key":       {},
	"authorization": {},
	"cookie":        {},
}

// Logger owns the process [slog.Logger] handed to the engine, the server
// and the stock middleware.
//
// All methods are safe for concurrent use.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       slog.LevelVar

	serviceName    string
	serviceVersion string
	environment    string

	addSource   bool
	replaceAttr func(groups []string, a slog.Attr) slog.Attr
	sampling    *SamplingConfig

	customLogger   *slog.Logger
	useCustom      bool
	registerGlobal bool

	slogger  *slog.Logger
	shutdown atomic.Bool
}

// Option is a functional option for configuring the logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
	}
	l.level.Set(LevelInfo)
	return l
}

// New creates a Logger. It does not replace the slog default unless
// [WithGlobalLogger] is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if l.useCustom {
		l.slogger = l.customLogger
	} else {
		h, err := l.handler()
		if err != nil {
			return nil, err
		}
		l.slogger = slog.New(h)
	}

	var attrs []any
	if l.serviceName != "" {
		attrs = append(attrs, "service", l.serviceName)
	}
	if l.serviceVersion != "" {
		attrs = append(attrs, "version", l.serviceVersion)
	}
	if l.environment != "" {
		attrs = append(attrs, "env", l.environment)
	}
	if len(attrs) > 0 {
		l.slogger = l.slogger.With(attrs...)
	}

	if l.registerGlobal {
		slog.SetDefault(l.slogger)
	}
	return l, nil
}

// MustNew creates a Logger or panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// Validate checks if the configuration is valid.
func (l *Logger) Validate() error {
	if l.output == nil {
		return errors.New("output writer cannot be nil")
	}
	if l.useCustom && l.customLogger == nil {
		return ErrNilLogger
	}
	if s := l.sampling; s != nil && (s.Initial < 0 || s.Thereafter < 0 || s.Tick < 0) {
		return errors.New("sampling config values must be non-negative")
	}
	return nil
}

func (l *Logger) handler() (slog.Handler, error) {
	opts := &slog.HandlerOptions{
		Level:       &l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.replace,
	}

	var h slog.Handler
	switch l.handlerType {
	case JSONHandler:
		h = slog.NewJSONHandler(l.output, opts)
	case TextHandler:
		h = slog.NewTextHandler(l.output, opts)
	case ConsoleHandler:
		h = newConsoleHandler(l.output, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidHandler, l.handlerType)
	}

	h = &gateHandler{next: h, closed: &l.shutdown}
	if l.sampling != nil {
		h = newSamplingHandler(h, *l.sampling)
	}
	return h, nil
}

func (l *Logger) replace(groups []string, a slog.Attr) slog.Attr {
	if _, ok := redacted[a.Key]; ok {
		return slog.String(a.Key, "***REDACTED***")
	}
	if l.replaceAttr != nil {
		return l.replaceAttr(groups, a)
	}
	return a
}

// Logger returns the underlying [slog.Logger].
func (l *Logger) Logger() *slog.Logger {
	return l.slogger
}

// With returns a [slog.Logger] with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slogger.With(args...)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level. Errors bypass sampling.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// SetLevel changes the minimum level of every logger derived from l,
// including ones handed out before the call.
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	l.level.Set(level)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// ServiceName returns the service name attached to every entry.
func (l *Logger) ServiceName() string {
	return l.serviceName
}

// Shutdown stops the logger. Entries logged afterwards are dropped.
func (l *Logger) Shutdown(_ context.Context) error {
	if !l.shutdown.CompareAndSwap(false, true) {
		return ErrLoggerShutdown
	}
	if s, ok := l.output.(interface{ Sync() error }); ok && !l.useCustom {
		return s.Sync()
	}
	return nil
}

// ParseLevel maps "debug", "info", "warn" and "error" to a [Level].
func ParseLevel(s string) (Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return lvl, nil
}

// gateHandler drops records once the owning Logger is shut down.
type gateHandler struct {
	next   slog.Handler
	closed *atomic.Bool
}

func (h *gateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return !h.closed.Load() && h.next.Enabled(ctx, level)
}

func (h *gateHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.closed.Load() {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *gateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gateHandler{next: h.next.WithAttrs(attrs), closed: h.closed}
}

func (h *gateHandler) WithGroup(name string) slog.Handler {
	return &gateHandler{next: h.next.WithGroup(name), closed: h.closed}
}
