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
	"log/slog"
	"sync/atomic"
	"time"
)

// SamplingConfig configures log sampling for high-traffic scenarios.
//
// The first Initial entries are logged, then 1 in every Thereafter.
// The counter resets at every Tick so recent activity is always visible.
// Errors are never sampled.
type SamplingConfig struct {
	Initial    int           // Log first N entries unconditionally
	Thereafter int           // After Initial, log 1 of every M entries (0 = log all)
	Tick       time.Duration // Reset the counter every interval (0 = never)
}

type sampleState struct {
	cfg       SamplingConfig
	count     atomic.Int64
	lastReset atomic.Int64
	now       func() time.Time
}

// samplingHandler shares one counter across every handler derived from it.
type samplingHandler struct {
	next  slog.Handler
	state *sampleState
}

func newSamplingHandler(next slog.Handler, cfg SamplingConfig) *samplingHandler {
	st := &sampleState{cfg: cfg, now: time.Now}
	st.lastReset.Store(st.now().UnixNano())
	return &samplingHandler{next: next, state: st}
}

func (h *samplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *samplingHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.state.keep(r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *samplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &samplingHandler{next: h.next.WithAttrs(attrs), state: h.state}
}

func (h *samplingHandler) WithGroup(name string) slog.Handler {
	return &samplingHandler{next: h.next.WithGroup(name), state: h.state}
}

func (s *sampleState) keep(level slog.Level) bool {
	if level >= slog.LevelError {
		return true
	}

	if s.cfg.Tick > 0 {
		now := s.now().UnixNano()
		last := s.lastReset.Load()
		if now-last >= int64(s.cfg.Tick) && s.lastReset.CompareAndSwap(last, now) {
			s.count.Store(0)
		}
	}

	n := s.count.Add(1)
	if n <= int64(s.cfg.Initial) || s.cfg.Thereafter == 0 {
		return true
	}
	return (n-int64(s.cfg.Initial))%int64(s.cfg.Thereafter) == 0
}
