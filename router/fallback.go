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
	"net/http"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/kingwill101/routed-sub001/router/route"
)

var fallbackMetric = metrics.NewSorensenDice()

// fallbackScore rates how closely prefix resembles path. The global
// fallback has no prefix and scores 0.
func fallbackScore(path, prefix string) float64 {
	if prefix == "" {
		return 0
	}
	return strutil.Similarity(path, prefix, fallbackMetric)
}

// selectFallback picks among the fallbacks accepting the request the one
// whose prefix is most similar to path. Ties keep the first registered.
// HEAD falls back to GET fallbacks, as route dispatch does.
func (t *routeTable) selectFallback(method, path string, req *http.Request) (*compiledRoute, float64) {
	best, score := t.selectFallbackFor(method, path, req)
	if best == nil && method == http.MethodHead {
		return t.selectFallbackFor(http.MethodGet, path, req)
	}
	return best, score
}

func (t *routeTable) selectFallbackFor(method, path string, req *http.Request) (*compiledRoute, float64) {
	var (
		best      *compiledRoute
		bestScore float64
	)
	for _, r := range t.fallbacks {
		if r.method != AnyMethod && r.method != method {
			continue
		}
		if !r.pattern.Match(path) || !route.CheckAll(r.constraints, req, nil) {
			continue
		}
		score := fallbackScore(path, r.pattern.Prefix)
		if best == nil || score > bestScore {
			best, bestScore = r, score
		}
	}
	return best, bestScore
}
