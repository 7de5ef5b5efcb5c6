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
	"slices"
	"strings"

	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// normalizePath maps the empty path to "/" and, when collapse is set,
// squeezes runs of slashes.
func normalizePath(path string, collapse bool) string {
	if path == "" {
		return "/"
	}
	if !collapse || !strings.Contains(path, "//") {
		return path
	}
	var b strings.Builder
	b.Grow(len(path))
	prevSlash := false
	for i := 0; i < len(path); i++ {
		ch := path[i]
		if ch == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// toggleSlash adds or removes the trailing slash. The root has no
// alternate form.
func toggleSlash(path string) (string, bool) {
	if path == "/" {
		return "", false
	}
	if strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/"), true
	}
	return path + "/", true
}

// lookup finds the route for method, trying routes registered for every
// method last.
func (t *routeTable) lookup(method, path string, req *http.Request, reg *compiler.Registry) (*compiledRoute, compiler.Params, bool) {
	if r, ps, ok := t.lookupMethod(method, path, req, reg); ok {
		return r, ps, true
	}
	return t.lookupMethod(AnyMethod, path, req, reg)
}

// lookupMethod checks the static index, then the trie, then the linear
// list, all for one method bucket.
func (t *routeTable) lookupMethod(method, path string, req *http.Request, reg *compiler.Registry) (*compiledRoute, compiler.Params, bool) {
	if t.bloom.Test(staticKey(method, path)) {
		if r := t.static[method][path]; r != nil && route.CheckAll(r.constraints, req, compiler.Params{}) {
			return r, compiler.Params{}, true
		}
	}
	if root := t.tries[method]; root != nil {
		if r, ps, ok := root.search(path, req, reg); ok {
			return r, ps, true
		}
	}
	return acceptFirst(t.patterns[method], path, req, reg)
}

// matchesAny reports whether path is routable under any method.
func (t *routeTable) matchesAny(path string, req *http.Request, reg *compiler.Registry) bool {
	if _, _, ok := t.lookupMethod(AnyMethod, path, req, reg); ok {
		return true
	}
	for _, m := range t.methods {
		if _, _, ok := t.lookupMethod(m, path, req, reg); ok {
			return true
		}
	}
	return false
}

// allowedMethods lists the methods with a route accepting path. The
// result is empty when none does. Otherwise it is sorted, HEAD is added
// when GET is present and OPTIONS when autoOptions is set.
func (t *routeTable) allowedMethods(path string, req *http.Request, reg *compiler.Registry, autoOptions bool) []string {
	var allowed []string
	for _, m := range t.methods {
		if _, _, ok := t.lookupMethod(m, path, req, reg); ok {
			allowed = append(allowed, m)
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, http.MethodGet) && !slices.Contains(allowed, http.MethodHead) {
		allowed = append(allowed, http.MethodHead)
	}
	if autoOptions && !slices.Contains(allowed, http.MethodOptions) {
		allowed = append(allowed, http.MethodOptions)
	}
	slices.Sort(allowed)
	return allowed
}
