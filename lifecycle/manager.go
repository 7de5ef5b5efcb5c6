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

package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	// ErrDraining is returned by Begin while the manager is draining and
	// the request path is not allow-listed.
	ErrDraining = errors.New("lifecycle: server is draining")

	// ErrClosed is returned by Begin after a forced close.
	ErrClosed = errors.New("lifecycle: server is closed")

	// ErrGraceExpired is returned by Drain when requests were still running
	// at the end of the grace period and had to be force-closed.
	ErrGraceExpired = errors.New("lifecycle: grace period expired")
)

// State is the manager state.
type State int32

const (
	StateRunning State = iota
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for drain progress.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAllowPaths lists paths still served while draining, typically
// health checks.
func WithAllowPaths(paths ...string) Option {
	return func(m *Manager) {
		for _, p := range paths {
			m.allow[p] = struct{}{}
		}
	}
}

// WithIDGenerator replaces the request id generator.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithULIDs makes request ids lexically sortable by start time.
func WithULIDs() Option {
	return WithIDGenerator(func() string { return ulid.Make().String() })
}

// Manager coordinates in-flight requests with shutdown.
//
// Requests call Begin when they arrive and End when they finish. Shutdown
// calls Drain, which rejects new work, waits for the active set to empty
// and force-closes whatever is left when the grace period ends.
type Manager struct {
	active *ActiveSet
	state  atomic.Int32
	allow  map[string]struct{}
	newID  func() string
	logger *slog.Logger

	forceOnce sync.Once
	forced    chan struct{}

	mu      sync.Mutex
	closers []func()
}

// New returns a running manager.
func New(opts ...Option) *Manager {
	m := &Manager{
		active: NewActiveSet(),
		allow:  make(map[string]struct{}),
		newID:  uuid.NewString,
		logger: slog.New(slog.DiscardHandler),
		forced: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Draining reports whether new requests are being turned away.
func (m *Manager) Draining() bool {
	return m.State() != StateRunning
}

// Allowed reports whether path is served while draining.
func (m *Manager) Allowed(path string) bool {
	_, ok := m.allow[path]
	return ok
}

// Begin registers r as in flight. It returns the request id and a copy of
// r whose context is cancelled on End or on a forced close.
//
// The state check and the registration happen under the active set's
// lock, the same lock state transitions take, so a request is either
// refused or visible to a concurrent Drain and ForceClose.
func (m *Manager) Begin(r *http.Request) (string, *http.Request, error) {
	id := m.newID()
	ctx, cancel := context.WithCancel(r.Context())
	tracked := r.WithContext(ctx)

	err := m.active.AddIf(id, tracked, cancel, func() error {
		switch m.State() {
		case StateClosed:
			return ErrClosed
		case StateDraining:
			if !m.Allowed(r.URL.Path) {
				return ErrDraining
			}
		}
		return nil
	})
	if err != nil {
		cancel()
		return "", r, err
	}
	return id, tracked, nil
}

// End marks the request finished. Unknown ids are ignored, which covers
// requests already removed by a forced close.
func (m *Manager) End(id string) {
	if id == "" {
		return
	}
	m.active.Remove(id)
}

// Active returns the number of in-flight requests.
func (m *Manager) Active() int {
	return m.active.Len()
}

// Requests lists the in-flight requests.
func (m *Manager) Requests() []ActiveRequest {
	return m.active.Snapshot()
}

// Wait blocks until no request is in flight or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	return m.active.Wait(ctx)
}

// StartDrain switches to draining. It is a no-op unless running.
func (m *Manager) StartDrain() {
	var started bool
	m.active.locked(func() {
		started = m.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
	})
	if started {
		m.logger.Info("draining started", "active", m.active.Len())
	}
}

// Drain starts draining and waits up to grace for in-flight requests.
// Requests still running afterwards are force-closed and ErrGraceExpired
// is returned. A zero grace waits only for ctx.
func (m *Manager) Drain(ctx context.Context, grace time.Duration) error {
	m.StartDrain()

	waitCtx := ctx
	if grace > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, grace)
		defer cancel()
	}

	select {
	case <-m.active.Done():
		m.logger.Info("drain complete")
		return nil
	case <-m.forced:
		return nil
	case <-waitCtx.Done():
	}

	n := m.ForceClose()
	m.logger.Warn("grace period expired, forced close", "remaining", n)
	return ErrGraceExpired
}

// OnForceClose registers fn to run once when ForceClose is first called.
// Servers use it to close their listeners and connections.
func (m *Manager) OnForceClose(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closers = append(m.closers, fn)
}

// ForceClose cancels every in-flight request and runs the registered
// closers. Only the first call has an effect; it returns the number of
// requests that were cancelled, later calls return 0.
func (m *Manager) ForceClose() int {
	n := 0
	m.forceOnce.Do(func() {
		m.active.locked(func() { m.state.Store(int32(StateClosed)) })
		n = m.active.CancelAll()
		close(m.forced)

		m.mu.Lock()
		closers := append([]func(){}, m.closers...)
		m.mu.Unlock()
		for _, fn := range closers {
			m.safeRun(fn)
		}
	})
	return n
}

// Forced is closed after the first ForceClose.
func (m *Manager) Forced() <-chan struct{} {
	return m.forced
}

func (m *Manager) safeRun(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			m.logger.Error("force-close hook panicked", "panic", rec)
		}
	}()
	fn()
}
