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
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrBodyTooLarge is reported when a request body exceeds the
	// configured maximum. It is answered with 413.
	ErrBodyTooLarge = errors.New("request body too large")

	// ErrResponseWriterNotHijacker indicates that the ResponseWriter does
	// not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")

	// ErrRouteNotFound indicates that no route has the requested name.
	ErrRouteNotFound = errors.New("route not found")

	// ErrDuplicateRoute indicates two non-fallback routes share a method
	// and path.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrDuplicateName indicates two routes share a name.
	ErrDuplicateName = errors.New("duplicate route name")

	// ErrMountCycle indicates a router was mounted inside itself.
	ErrMountCycle = errors.New("mount cycle")

	// ErrNilBindTarget indicates Bind was called with a nil destination.
	ErrNilBindTarget = errors.New("bind target is nil")

	// ErrResponseClosed is returned by writes after the error pipeline
	// has answered the request.
	ErrResponseClosed = errors.New("response already closed")

	// ErrDetached is returned by writes after the connection was handed
	// over with Detach or Hijack.
	ErrDetached = errors.New("request detached from engine")
)

// bodyTooLargeMessage is the fixed client message for ErrBodyTooLarge.
const bodyTooLargeMessage = "Request body too large"

// HTTPError carries an explicit status code and client message.
// Handlers report it with c.Error and the engine answers with exactly that
// status and message.
type HTTPError struct {
	Status  int
	Message string
	Err     error // optional cause, never shown to clients
}

// NewHTTPError returns an HTTPError. An empty message uses the status text.
func NewHTTPError(status int, message string) *HTTPError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// HTTPStatus returns the status code.
func (e *HTTPError) HTTPStatus() int { return e.Status }

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports invalid input. It is answered with 422 unless
// Status is set, and its fields are rendered in the response body.
type ValidationError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation failed"
	}
	if len(e.Fields) == 0 {
		return msg
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return msg + ": " + strings.Join(names, ", ")
}

// HTTPStatus returns Status or 422.
func (e *ValidationError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return http.StatusUnprocessableEntity
}

// Details returns the field errors.
func (e *ValidationError) Details() any { return e.Fields }

// Code returns a machine-readable code.
func (e *ValidationError) Code() string { return "validation_failed" }

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error value.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// BuildError describes one problem found while building the route table.
// Build returns all of them joined.
type BuildError struct {
	Method string
	Path   string
	Name   string
	Err    error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString("router: ")
	b.WriteString(e.Err.Error())
	if e.Method != "" || e.Path != "" {
		fmt.Fprintf(&b, " (%s %s)", e.Method, e.Path)
	}
	if e.Name != "" {
		fmt.Fprintf(&b, " name=%q", e.Name)
	}
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }
