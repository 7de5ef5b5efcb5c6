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
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/kingwill101/routed-sub001/lifecycle"
	"github.com/kingwill101/routed-sub001/router"
)

type health struct {
	lm        *lifecycle.Manager
	timeout   time.Duration
	liveness  map[string]CheckFunc
	readiness map[string]CheckFunc
}

type probeResponse struct {
	Status string            `json:"status"`
	State  string            `json:"state,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

func newHealth(lm *lifecycle.Manager, timeout time.Duration, liveness, readiness map[string]CheckFunc) *health {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &health{lm: lm, timeout: timeout, liveness: liveness, readiness: readiness}
}

// live answers the liveness probe. Draining does not affect it.
func (h *health) live(c *router.Context) {
	c.Header("Cache-Control", "no-store")
	if failures := runChecks(c.Context(), h.liveness, h.timeout); len(failures) > 0 {
		_ = c.JSON(http.StatusServiceUnavailable, probeResponse{Status: "unhealthy", Checks: failures})
		return
	}
	_ = c.JSON(http.StatusOK, probeResponse{Status: "ok"})
}

// ready answers the readiness probe. A draining process is not ready, so
// load balancers stop sending it traffic.
func (h *health) ready(c *router.Context) {
	c.Header("Cache-Control", "no-store")
	state := h.lm.State().String()
	if h.lm.Draining() {
		_ = c.JSON(http.StatusServiceUnavailable, probeResponse{Status: "draining", State: state})
		return
	}
	if failures := runChecks(c.Context(), h.readiness, h.timeout); len(failures) > 0 {
		_ = c.JSON(http.StatusServiceUnavailable, probeResponse{Status: "unavailable", State: state, Checks: failures})
		return
	}
	_ = c.JSON(http.StatusOK, probeResponse{Status: "ok", State: state})
}

// runChecks runs every check concurrently, each under its own timeout,
// and returns the failures by name.
func runChecks(ctx context.Context, checks map[string]CheckFunc, timeout time.Duration) map[string]string {
	if len(checks) == 0 {
		return nil
	}
	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(checks))
	for name, fn := range checks {
		go func() {
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results <- result{name, fn(checkCtx)}
		}()
	}

	failures := make(map[string]string)
	for range len(checks) {
		if r := <-results; r.err != nil {
			failures[r.name] = r.err.Error()
		}
	}
	return failures
}
