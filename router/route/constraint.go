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

package route

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
)

// ConstraintKind identifies the variant held by a Constraint.
type ConstraintKind uint8

const (
	// ConstraintRegex matches a named parameter's decoded value.
	ConstraintRegex ConstraintKind = iota + 1
	// ConstraintPredicate calls an arbitrary function with the request.
	ConstraintPredicate
	// ConstraintDomain matches the request host, without port.
	ConstraintDomain
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintRegex:
		return "regex"
	case ConstraintPredicate:
		return "predicate"
	case ConstraintDomain:
		return "domain"
	default:
		return "unknown"
	}
}

// ErrInvalidConstraint is returned when a constraint cannot be compiled.
var ErrInvalidConstraint = errors.New("invalid route constraint")

// Constraint is an extra predicate a route must satisfy after its path
// and method matched. Use [Regex], [Predicate] or [Domain] to build one.
type Constraint struct {
	Kind      ConstraintKind
	Param     string
	Pattern   string
	Predicate func(*http.Request) bool

	re *regexp.Regexp
}

// Regex requires the named parameter to match pattern in full.
func Regex(param, pattern string) Constraint {
	return Constraint{Kind: ConstraintRegex, Param: param, Pattern: pattern}
}

// Predicate requires fn to return true for the request.
func Predicate(fn func(*http.Request) bool) Constraint {
	return Constraint{Kind: ConstraintPredicate, Predicate: fn}
}

// Domain requires the request host to match pattern.
// The pattern is not anchored implicitly: use ^ and $ as needed.
func Domain(pattern string) Constraint {
	return Constraint{Kind: ConstraintDomain, Pattern: pattern}
}

// Compile returns a copy of c with its pattern compiled.
func (c Constraint) Compile() (Constraint, error) {
	switch c.Kind {
	case ConstraintRegex:
		if c.Param == "" {
			return c, fmt.Errorf("%w: regex constraint without parameter", ErrInvalidConstraint)
		}
		re, err := regexp.Compile("^(?:" + c.Pattern + ")$")
		if err != nil {
			return c, fmt.Errorf("%w: %q: %w", ErrInvalidConstraint, c.Param, err)
		}
		c.re = re
	case ConstraintDomain:
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return c, fmt.Errorf("%w: domain: %w", ErrInvalidConstraint, err)
		}
		c.re = re
	case ConstraintPredicate:
		if c.Predicate == nil {
			return c, fmt.Errorf("%w: nil predicate", ErrInvalidConstraint)
		}
	default:
		return c, fmt.Errorf("%w: unknown kind %d", ErrInvalidConstraint, c.Kind)
	}
	return c, nil
}

// ParamLookup gives constraints access to extracted parameters.
type ParamLookup interface {
	Lookup(name string) (string, bool)
}

// Check evaluates c. A referenced parameter that was not captured fails
// the check.
func (c Constraint) Check(r *http.Request, params ParamLookup) bool {
	if c.re == nil && c.Kind != ConstraintPredicate {
		compiled, err := c.Compile()
		if err != nil {
			return false
		}
		c = compiled
	}

	switch c.Kind {
	case ConstraintRegex:
		if params == nil {
			return false
		}
		v, ok := params.Lookup(c.Param)
		if !ok {
			return false
		}
		return c.re.MatchString(v)
	case ConstraintDomain:
		return c.re.MatchString(Host(r))
	case ConstraintPredicate:
		return c.Predicate != nil && c.Predicate(r)
	default:
		return false
	}
}

// CheckAll reports whether every constraint passes.
func CheckAll(constraints []Constraint, r *http.Request, params ParamLookup) bool {
	for _, c := range constraints {
		if !c.Check(r, params) {
			return false
		}
	}
	return true
}

// Host returns the request host without its port.
func Host(r *http.Request) string {
	host := r.Host
	if host == "" && r.URL != nil {
		host = r.URL.Host
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
