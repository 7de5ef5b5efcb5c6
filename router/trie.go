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
	"strings"

	"github.com/kingwill101/routed-sub001/router/compiler"
	"github.com/kingwill101/routed-sub001/router/route"
)

// trieNode indexes pattern routes by path segment. At every depth literal
// children are tried before parameter edges, and parameter edges before
// wildcards. Candidates are confirmed with the route's full matcher, so
// the trie only narrows the search.
type trieNode struct {
	literals  map[string]*trieNode
	params    []*paramEdge
	wildcards []*compiledRoute
	routes    []*compiledRoute
}

type paramEdge struct {
	pattern string
	seg     compiler.Segment
	child   *trieNode
}

func newTrieNode() *trieNode {
	return &trieNode{literals: make(map[string]*trieNode)}
}

func (n *trieNode) insert(r *compiledRoute) {
	cur := n
	for _, seg := range r.pattern.Segments {
		switch seg.Kind {
		case compiler.SegmentLiteral:
			next := cur.literals[seg.Literal]
			if next == nil {
				next = newTrieNode()
				cur.literals[seg.Literal] = next
			}
			cur = next
		case compiler.SegmentParam:
			cur = cur.paramChild(seg)
		case compiler.SegmentWildcard:
			cur.wildcards = append(cur.wildcards, r)
			return
		}
	}
	cur.routes = append(cur.routes, r)
}

// paramChild shares an edge between parameters with the same pattern, so
// /users/{id} and /users/{name}/posts branch below one node.
func (n *trieNode) paramChild(seg compiler.Segment) *trieNode {
	key := seg.Matcher.String()
	for _, e := range n.params {
		if e.pattern == key {
			return e.child
		}
	}
	e := &paramEdge{pattern: key, seg: seg, child: newTrieNode()}
	n.params = append(n.params, e)
	return e.child
}

func splitSegments(path string) []string {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// search walks the trie with backtracking and returns the first route
// whose matcher and constraints accept the request.
func (n *trieNode) search(path string, req *http.Request, reg *compiler.Registry) (*compiledRoute, compiler.Params, bool) {
	return n.walk(splitSegments(path), 0, path, req, reg)
}

func (n *trieNode) walk(segs []string, i int, path string, req *http.Request, reg *compiler.Registry) (*compiledRoute, compiler.Params, bool) {
	if i == len(segs) {
		return acceptFirst(n.routes, path, req, reg)
	}

	if child := n.literals[segs[i]]; child != nil {
		if r, ps, ok := child.walk(segs, i+1, path, req, reg); ok {
			return r, ps, true
		}
	}
	for _, e := range n.params {
		if !e.seg.Matcher.MatchString(segs[i]) {
			continue
		}
		if r, ps, ok := e.child.walk(segs, i+1, path, req, reg); ok {
			return r, ps, true
		}
	}
	return acceptFirst(n.wildcards, path, req, reg)
}

func acceptFirst(routes []*compiledRoute, path string, req *http.Request, reg *compiler.Registry) (*compiledRoute, compiler.Params, bool) {
	for _, r := range routes {
		if ps, ok := accept(r, path, req, reg); ok {
			return r, ps, true
		}
	}
	return nil, compiler.Params{}, false
}

// accept runs the full matcher and the constraints of r.
func accept(r *compiledRoute, path string, req *http.Request, reg *compiler.Registry) (compiler.Params, bool) {
	ps, ok := r.pattern.Extract(path, reg)
	if !ok {
		return compiler.Params{}, false
	}
	if !route.CheckAll(r.constraints, req, ps) {
		return compiler.Params{}, false
	}
	return ps, true
}
