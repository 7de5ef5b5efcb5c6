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
	"errors"
	"net/http"
)

// Simple formats errors as {"error": "...", "code": "...", "details": ...}
// with Content-Type "application/json".
type Simple struct {
	// StatusResolver overrides the status code.
	StatusResolver func(err error) int
}

// Format implements Formatter.
func (f *Simple) Format(_ *http.Request, err error) Response {
	status := Status(err)
	if f.StatusResolver != nil {
		status = f.StatusResolver(err)
	}

	body := map[string]any{"error": err.Error()}

	var detailed ErrorDetails
	if errors.As(err, &detailed) {
		if d := detailed.Details(); d != nil {
			body["details"] = d
		}
	}

	var coded ErrorCode
	if errors.As(err, &coded) {
		body["code"] = coded.Code()
	}

	return Response{
		Status:      status,
		ContentType: "application/json; charset=utf-8",
		Body:        body,
	}
}
