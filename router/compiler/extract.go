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

package compiler

import "net/url"

type missingValue struct{}

func (missingValue) String() string { return "<missing>" }

// Missing marks a required parameter that captured nothing.
// It is distinct from a legitimately empty string.
var Missing any = missingValue{}

// Params holds extracted parameter values.
// Typed values have been cast through the registry; Raw values are the
// percent-decoded strings.
type Params struct {
	Typed map[string]any
	Raw   map[string]string
}

// Lookup returns the decoded string value of name.
func (ps Params) Lookup(name string) (string, bool) {
	v, ok := ps.Raw[name]
	return v, ok
}

// Extract runs the matcher against path and returns the captured
// parameters. Optional parameters that did not participate are omitted.
func (p *Pattern) Extract(path string, reg *Registry) (Params, bool) {
	idx := p.Regexp.FindStringSubmatchIndex(path)
	if idx == nil {
		return Params{}, false
	}
	if len(p.Names) == 0 {
		return Params{}, true
	}

	ps := Params{
		Typed: make(map[string]any, len(p.Names)),
		Raw:   make(map[string]string, len(p.Names)),
	}
	for i, name := range p.Regexp.SubexpNames() {
		if name == "" {
			continue
		}
		info := p.Params[name]
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			if !info.Optional {
				ps.Typed[name] = Missing
			}
			continue
		}
		raw := decode(path[start:end])
		ps.Raw[name] = raw
		if reg != nil {
			ps.Typed[name] = reg.Cast(raw, info.Type)
		} else {
			ps.Typed[name] = raw
		}
	}
	return ps, true
}

// decode percent-decodes v, returning v unchanged when it is malformed.
func decode(v string) string {
	d, err := url.PathUnescape(v)
	if err != nil {
		return v
	}
	return d
}
