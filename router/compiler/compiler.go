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

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"regexp/syntax"
	"slices"
	"strings"
)

// ErrInvalidTemplate is wrapped by every template syntax error.
var ErrInvalidTemplate = errors.New("invalid route template")

// FallbackToken is the reserved trailing segment of fallback routes.
// It is distinct from user wildcards, which are always named ({*name}).
const FallbackToken = "*"

// ParamInfo describes one placeholder of a compiled template.
type ParamInfo struct {
	Type     string
	Optional bool
	Wildcard bool
}

// SegmentKind classifies one slash-separated piece of a template.
type SegmentKind uint8

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
	SegmentWildcard
	// SegmentComplex mixes literals and placeholders, or holds an optional
	// placeholder. Templates containing one cannot be indexed by a trie.
	SegmentComplex
)

// Segment is one piece of a template used for trie indexing.
type Segment struct {
	Kind    SegmentKind
	Literal string
	Param   string
	Matcher *regexp.Regexp // anchored per-segment pattern for SegmentParam
}

// tokens are the lexical pieces of a template, kept for URL generation.
type token struct {
	literal string
	param   string
	info    ParamInfo
	isParam bool
}

// Pattern is a compiled route template.
type Pattern struct {
	Template string
	Regexp   *regexp.Regexp
	Params   map[string]ParamInfo
	Names    []string // placeholder names in template order
	Static   bool
	Fallback bool
	// Prefix is the literal text before the first placeholder or the
	// fallback token. For static templates it is the whole template.
	Prefix   string
	Segments []Segment
	Trieable bool

	tokens []token
}

var paramNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsStatic reports whether template contains neither '{' nor '*'.
func IsStatic(template string) bool {
	return !strings.ContainsAny(template, "{*")
}

// IsFallback reports whether template is a fallback template: the bare
// token or a path ending in "/*".
func IsFallback(template string) bool {
	return template == FallbackToken || template == "/"+FallbackToken ||
		strings.HasSuffix(template, "/"+FallbackToken)
}

// Compile turns template into a Pattern, resolving placeholder patterns
// through reg.
func Compile(template string, reg *Registry) (*Pattern, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	if IsFallback(template) {
		return compileFallback(template)
	}

	p := &Pattern{
		Template: template,
		Params:   make(map[string]ParamInfo),
		Static:   IsStatic(template),
	}

	if p.Static {
		p.Prefix = template
		re, err := regexp.Compile("^" + regexp.QuoteMeta(template) + "$")
		if err != nil {
			return nil, err
		}
		p.Regexp = re
		p.tokens = []token{{literal: template}}
		p.Segments, p.Trieable = analyzeSegments(template, reg)
		return p, nil
	}

	tokens, err := tokenize(template)
	if err != nil {
		return nil, err
	}
	p.tokens = tokens

	var b strings.Builder
	b.WriteByte('^')
	prefixDone := false
	for _, t := range tokens {
		if !t.isParam {
			b.WriteString(regexp.QuoteMeta(t.literal))
			if !prefixDone {
				p.Prefix += t.literal
			}
			continue
		}
		prefixDone = true

		if _, dup := p.Params[t.param]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q in %q", ErrInvalidTemplate, t.param, template)
		}
		p.Params[t.param] = t.info
		p.Names = append(p.Names, t.param)

		switch {
		case t.info.Optional:
			// The literal before the placeholder is kept: /users/{id?}
			// matches /users/ and /users/7, and /users is left to the
			// trailing-slash redirect.
			fmt.Fprintf(&b, "(?:/?(?P<%s>%s))?", t.param, resolvePattern(reg, t.param, t.info.Type))
		case t.info.Wildcard:
			fmt.Fprintf(&b, "(?P<%s>.*)", t.param)
		default:
			fmt.Fprintf(&b, "(?P<%s>%s)", t.param, resolvePattern(reg, t.param, t.info.Type))
		}
	}
	b.WriteByte('$')

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", template, err)
	}
	p.Regexp = re
	p.Segments, p.Trieable = analyzeSegments(template, reg)

	return p, nil
}

func compileFallback(template string) (*Pattern, error) {
	prefix := strings.TrimSuffix(strings.TrimSuffix(template, FallbackToken), "/")
	expr := "^.*$"
	if prefix != "" {
		expr = "^" + regexp.QuoteMeta(prefix) + "(?:/.*)?$"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{
		Template: template,
		Regexp:   re,
		Params:   map[string]ParamInfo{},
		Fallback: true,
		Prefix:   prefix,
		tokens:   []token{{literal: prefix}},
	}, nil
}

// resolvePattern picks the explicit type pattern, then the parameter-name
// pattern, then the default.
func resolvePattern(reg *Registry, param, typeName string) string {
	if typeName != "" {
		if def, ok := reg.ResolveType(typeName); ok {
			return def.Pattern
		}
	}
	if p, ok := reg.ResolveParamPattern(param); ok {
		return p
	}
	return DefaultParamPattern
}

func tokenize(template string) ([]token, error) {
	var tokens []token
	rest := template
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			tokens = append(tokens, token{literal: rest})
			break
		}
		if open > 0 {
			tokens = append(tokens, token{literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed '{' in %q", ErrInvalidTemplate, template)
		}
		inner := rest[open+1 : open+end]
		t, err := parsePlaceholder(inner)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTemplate, template, err)
		}
		tokens = append(tokens, t)
		rest = rest[open+end+1:]
	}
	return tokens, nil
}

func parsePlaceholder(inner string) (token, error) {
	t := token{isParam: true}
	name := strings.TrimSpace(inner)

	switch {
	case strings.HasPrefix(name, "*"):
		t.info.Wildcard = true
		name = name[1:]
	case strings.HasSuffix(name, "?"):
		t.info.Optional = true
		name = strings.TrimSuffix(name, "?")
	}

	if n, typ, ok := strings.Cut(name, ":"); ok {
		name, t.info.Type = n, typ
	}
	if !paramNameRe.MatchString(name) {
		return t, fmt.Errorf("invalid parameter name %q", name)
	}
	t.param = name
	return t, nil
}

// analyzeSegments splits a template into segments for trie indexing.
func analyzeSegments(template string, reg *Registry) ([]Segment, bool) {
	trimmed := strings.TrimPrefix(template, "/")
	if trimmed == "" {
		return nil, true
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]Segment, 0, len(parts))
	trieable := true

	for i, part := range parts {
		if !strings.Contains(part, "{") {
			segs = append(segs, Segment{Kind: SegmentLiteral, Literal: part})
			continue
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && strings.Count(part, "{") == 1 {
			t, err := parsePlaceholder(part[1 : len(part)-1])
			if err == nil && t.info.Wildcard && i == len(parts)-1 {
				segs = append(segs, Segment{Kind: SegmentWildcard, Param: t.param})
				continue
			}
			if err == nil && !t.info.Optional && !t.info.Wildcard {
				pattern := resolvePattern(reg, t.param, t.info.Type)
				re, cerr := regexp.Compile("^(?:" + pattern + ")$")
				if cerr == nil && !matchesSlash(pattern) {
					segs = append(segs, Segment{Kind: SegmentParam, Param: t.param, Matcher: re})
					continue
				}
			}
		}
		segs = append(segs, Segment{Kind: SegmentComplex, Literal: part})
		trieable = false
	}
	return segs, trieable
}

// matchesSlash reports whether pattern can consume a '/'. Such
// placeholders span segments, so the trie cannot index them.
func matchesSlash(pattern string) bool {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return true
	}
	return consumesSlash(re.Simplify())
}

func consumesSlash(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return true
	case syntax.OpLiteral:
		return slices.Contains(re.Rune, '/')
	case syntax.OpCharClass:
		for i := 0; i+1 < len(re.Rune); i += 2 {
			if re.Rune[i] <= '/' && '/' <= re.Rune[i+1] {
				return true
			}
		}
		return false
	}
	return slices.ContainsFunc(re.Sub, consumesSlash)
}

// Match reports whether path is accepted by the compiled matcher.
func (p *Pattern) Match(path string) bool {
	return p.Regexp.MatchString(path)
}

// Build renders the template with params substituted.
// Values are path-escaped, except wildcards which keep their slashes.
func (p *Pattern) Build(params map[string]string) (string, error) {
	if p.Fallback {
		return p.Prefix, nil
	}
	var b strings.Builder
	for _, t := range p.tokens {
		if !t.isParam {
			b.WriteString(t.literal)
			continue
		}
		v, ok := params[t.param]
		if !ok || v == "" {
			if t.info.Optional {
				continue
			}
			return "", fmt.Errorf("missing value for parameter %q", t.param)
		}
		if t.info.Wildcard {
			b.WriteString(v)
		} else {
			b.WriteString(url.PathEscape(v))
		}
	}
	out := b.String()
	if out == "" {
		out = "/"
	}
	return out, nil
}
