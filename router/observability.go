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
	"context"
	"net/http"
)

// ObservabilityRecorder observes every request the engine accepts, matched
// or not. Metrics and tracing recorders implement it.
//
// OnRequestStart runs before routing. The returned context replaces the
// request context, so a recorder can start a span that handlers see.
// Returning a nil state excludes the request: OnRequestEnd is skipped but
// the context is still used.
//
// OnRequestEnd runs after the chain and the error pipeline. routePattern
// is the matched template or a Pattern* sentinel, never the raw path.
//
// Implementations must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	OnRequestEnd(ctx context.Context, state any, info ResponseInfo, routePattern string)
}

type observation struct {
	recorder ObservabilityRecorder
	state    any
}

// observeStart runs the start hooks in order.
func (e *Engine) observeStart(req *http.Request) (*http.Request, []observation) {
	if len(e.cfg.observers) == 0 {
		return req, nil
	}
	ctx := req.Context()
	obs := make([]observation, 0, len(e.cfg.observers))
	for _, r := range e.cfg.observers {
		var state any
		ctx, state = r.OnRequestStart(ctx, req)
		if state != nil {
			obs = append(obs, observation{recorder: r, state: state})
		}
	}
	if ctx != req.Context() {
		req = req.WithContext(ctx)
	}
	return req, obs
}

// observeEnd runs the end hooks in reverse order.
func observeEnd(ctx context.Context, obs []observation, info ResponseInfo, pattern string) {
	for i := len(obs) - 1; i >= 0; i-- {
		obs[i].recorder.OnRequestEnd(ctx, obs[i].state, info, pattern)
	}
}
