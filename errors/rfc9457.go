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
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// RFC9457 formats errors as RFC 9457 Problem Details with Content-Type
// "application/problem+json".
type RFC9457 struct {
	// BaseURL is prepended to error codes to create problem type URIs.
	BaseURL string

	// TypeResolver overrides the problem type URI.
	TypeResolver func(err error) string

	// StatusResolver overrides the status code.
	StatusResolver func(err error) int

	// ErrorIDGenerator generates the error_id extension. Defaults to
	// a random UUID.
	ErrorIDGenerator func() string

	// DisableErrorID omits the error_id extension.
	DisableErrorID bool
}

// ProblemDetail is an RFC 9457 problem detail. Extensions are
// marshaled inline.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"-"`
}

var reservedProblemFields = map[string]struct{}{
	"type": {}, "title": {}, "status": {}, "detail": {}, "instance": {},
}

// MarshalJSON merges Extensions into the top-level object. Extensions
// never overwrite the standard members.
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		if _, reserved := reservedProblemFields[k]; !reserved {
			m[k] = v
		}
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}

	return json.Marshal(m)
}

// Format implements Formatter.
func (f *RFC9457) Format(req *http.Request, err error) Response {
	status := f.status(err)

	p := ProblemDetail{
		Type:       f.problemType(err),
		Title:      http.StatusText(status),
		Status:     status,
		Detail:     err.Error(),
		Extensions: make(map[string]any),
	}
	if req != nil && req.URL != nil {
		p.Instance = req.URL.Path
	}

	if !f.DisableErrorID {
		gen := f.ErrorIDGenerator
		if gen == nil {
			gen = uuid.NewString
		}
		p.Extensions["error_id"] = gen()
	}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		if d := detailed.Details(); d != nil {
			p.Extensions["errors"] = d
		}
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		p.Extensions["code"] = coded.Code()
	}

	return Response{
		Status:      status,
		ContentType: "application/problem+json; charset=utf-8",
		Body:        p,
	}
}

func (f *RFC9457) status(err error) int {
	if f.StatusResolver != nil {
		return f.StatusResolver(err)
	}

	return Status(err)
}

func (f *RFC9457) problemType(err error) string {
	if f.TypeResolver != nil {
		return f.TypeResolver(err)
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		if f.BaseURL != "" {
			return f.BaseURL + "/" + coded.Code()
		}

		return coded.Code()
	}

	return "about:blank"
}
