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
)

// Formatter turns an error into the parts of an HTTP response.
type Formatter interface {
	// Format converts err into a Response. req supplies the instance
	// path for formats that report it.
	Format(req *http.Request, err error) Response
}

// Response is a formatted error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is encoded as JSON by Write.
	Body any

	// Headers are added to the response before the status is written.
	Headers http.Header
}

// Write sends the response to w. Headers already present on w are kept.
func (r Response) Write(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range r.Headers {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	if r.ContentType != "" {
		h.Set("Content-Type", r.ContentType)
	}
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(r.Status)
	if r.Body == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(r.Body)
}

// ErrorType lets an error declare its HTTP status code.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails lets an error expose structured details, such as
// field-level validation failures.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode lets an error expose a machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// Status reports the status code declared by err or any error it wraps.
// Errors that declare nothing map to 500.
func Status(err error) int {
	var typed ErrorType
	if errors.As(err, &typed) {
		if s := typed.HTTPStatus(); s > 0 {
			return s
		}
	}

	return http.StatusInternalServerError
}

// NewRFC9457 creates an RFC 9457 formatter. baseURL is prepended to
// error codes to build problem type URIs.
func NewRFC9457(baseURL string) *RFC9457 {
	return &RFC9457{BaseURL: baseURL}
}

// NewSimple creates a Simple formatter.
func NewSimple() *Simple {
	return &Simple{}
}

// WithStatus wraps err with an explicit status code. A nil err is
// allowed and reports the status text as its message.
//
//	return errors.WithStatus(err, http.StatusNotFound)
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}

	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}
