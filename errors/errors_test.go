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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct {
	msg     string
	code    string
	status  int
	details any
}

func (e *codedError) Error() string   { return e.msg }
func (e *codedError) Code() string    { return e.code }
func (e *codedError) HTTPStatus() int { return e.status }
func (e *codedError) Details() any    { return e.details }

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, Status(WithStatus(nil, http.StatusNotFound)))
	assert.Equal(t, http.StatusConflict, Status(fmt.Errorf("wrapped: %w", WithStatus(errors.New("x"), http.StatusConflict))))
	assert.Equal(t, http.StatusInternalServerError, Status(&codedError{msg: "zero"}))
}

func TestWithStatus_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Not Found", WithStatus(nil, http.StatusNotFound).Error())

	base := errors.New("gone")
	err := WithStatus(base, http.StatusGone)
	assert.Equal(t, "gone", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestRFC9457_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formatter  *RFC9457
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "plain error",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        errors.New("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "about:blank",
		},
		{
			name:       "coded error",
			formatter:  NewRFC9457("https://api.example.com/problems"),
			err:        &codedError{msg: "invalid", code: "validation_failed", status: http.StatusUnprocessableEntity},
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "https://api.example.com/problems/validation_failed",
		},
		{
			name:       "no base URL",
			formatter:  NewRFC9457(""),
			err:        &codedError{msg: "x", code: "x_code", status: http.StatusBadRequest},
			wantStatus: http.StatusBadRequest,
			wantType:   "x_code",
		},
		{
			name: "resolvers",
			formatter: &RFC9457{
				TypeResolver:   func(error) string { return "urn:custom" },
				StatusResolver: func(error) int { return http.StatusTeapot },
			},
			err:        errors.New("x"),
			wantStatus: http.StatusTeapot,
			wantType:   "urn:custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/things/1", nil)
			resp := tt.formatter.Format(req, tt.err)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "application/problem+json; charset=utf-8", resp.ContentType)

			body, ok := resp.Body.(ProblemDetail)
			require.True(t, ok, "body is %T", resp.Body)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, http.StatusText(tt.wantStatus), body.Title)
			assert.Equal(t, tt.err.Error(), body.Detail)
			assert.Equal(t, "/things/1", body.Instance)
			assert.NotEmpty(t, body.Extensions["error_id"])
		})
	}
}

func TestRFC9457_ErrorID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	f := &RFC9457{ErrorIDGenerator: func() string { return "fixed" }}
	body := f.Format(req, errors.New("x")).Body.(ProblemDetail)
	assert.Equal(t, "fixed", body.Extensions["error_id"])

	f = &RFC9457{DisableErrorID: true}
	body = f.Format(req, errors.New("x")).Body.(ProblemDetail)
	assert.NotContains(t, body.Extensions, "error_id")
}

func TestRFC9457_Details(t *testing.T) {
	t.Parallel()

	err := &codedError{msg: "bad", code: "c", status: 422, details: []string{"name is required"}}
	body := NewRFC9457("").Format(httptest.NewRequest(http.MethodPost, "/", nil), err).Body.(ProblemDetail)

	assert.Equal(t, []string{"name is required"}, body.Extensions["errors"])
	assert.Equal(t, "c", body.Extensions["code"])
}

func TestProblemDetail_MarshalJSON(t *testing.T) {
	t.Parallel()

	p := ProblemDetail{
		Type:     "about:blank",
		Title:    "Bad Request",
		Status:   400,
		Detail:   "nope",
		Instance: "/a",
		Extensions: map[string]any{
			"error_id": "err-1",
			"type":     "overwritten",
		},
	}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "about:blank", got["type"])
	assert.Equal(t, "err-1", got["error_id"])
	assert.InDelta(t, 400, got["status"], 0)
}

func TestSimple_Format(t *testing.T) {
	t.Parallel()

	err := &codedError{msg: "missing", code: "not_found", status: http.StatusNotFound, details: map[string]any{"id": 7}}
	resp := NewSimple().Format(nil, err)

	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, "application/json; charset=utf-8", resp.ContentType)

	body, ok := resp.Body.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "missing", body["error"])
	assert.Equal(t, "not_found", body["code"])
	assert.Equal(t, map[string]any{"id": 7}, body["details"])

	plain := NewSimple().Format(nil, errors.New("x")).Body.(map[string]any)
	assert.NotContains(t, plain, "code")
	assert.NotContains(t, plain, "details")
}

func TestResponse_Write(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	resp := Response{
		Status:      http.StatusServiceUnavailable,
		ContentType: "application/json",
		Body:        map[string]string{"error": "draining"},
		Headers:     http.Header{"Retry-After": []string{"5"}},
	}
	require.NoError(t, resp.Write(rec))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"draining"}`, rec.Body.String())
}
