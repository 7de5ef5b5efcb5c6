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
	"net/http"
	"sync"
	"time"
)

// closedChan is the signal of an empty set.
var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

type entry struct {
	req     *http.Request
	cancel  context.CancelFunc
	started time.Time
}

// ActiveRequest is a snapshot of one in-flight request.
type ActiveRequest struct {
	ID      string
	Method  string
	Path    string
	Started time.Time
}

// ActiveSet tracks in-flight requests and signals when it becomes empty.
// The signal is re-armed each time the set goes from empty to non-empty.
type ActiveSet struct {
	mu      sync.Mutex
	entries map[string]entry
	done    chan struct{}
}

// NewActiveSet returns an empty set whose signal is already resolved.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{
		entries: make(map[string]entry),
		done:    closedChan,
	}
}

// Add registers a request. cancel may be nil.
func (s *ActiveSet) Add(id string, req *http.Request, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(id, req, cancel)
}

// AddIf registers a request only when admit returns nil. admit runs under
// the set's lock, so it is atomic with respect to other AddIf calls and
// to state changes made through locked.
func (s *ActiveSet) AddIf(id string, req *http.Request, cancel context.CancelFunc, admit func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := admit(); err != nil {
		return err
	}
	s.add(id, req, cancel)
	return nil
}

func (s *ActiveSet) add(id string, req *http.Request, cancel context.CancelFunc) {
	if len(s.entries) == 0 {
		s.done = make(chan struct{})
	}
	s.entries[id] = entry{req: req, cancel: cancel, started: time.Now()}
}

// locked runs fn while holding the set's lock.
func (s *ActiveSet) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Remove drops a request and reports whether it was present.
func (s *ActiveSet) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	delete(s.entries, id)
	if e.cancel != nil {
		e.cancel()
	}
	if len(s.entries) == 0 {
		close(s.done)
	}
	return true
}

// CancelAll cancels and removes every request and returns how many there
// were. The completion signal resolves.
func (s *ActiveSet) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	for id, e := range s.entries {
		if e.cancel != nil {
			e.cancel()
		}
		delete(s.entries, id)
	}
	if n > 0 {
		close(s.done)
	}
	return n
}

// Len returns the number of in-flight requests.
func (s *ActiveSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Done returns a channel closed once the set is empty.
func (s *ActiveSet) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Wait blocks until the set is empty or ctx is done.
func (s *ActiveSet) Wait(ctx context.Context) error {
	select {
	case <-s.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot lists the in-flight requests.
func (s *ActiveSet) Snapshot() []ActiveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ActiveRequest, 0, len(s.entries))
	for id, e := range s.entries {
		ar := ActiveRequest{ID: id, Started: e.started}
		if e.req != nil {
			ar.Method = e.req.Method
			if e.req.URL != nil {
				ar.Path = e.req.URL.Path
			}
		}
		out = append(out, ar)
	}
	return out
}
