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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator. Field names in errors use
// the json tag name.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Bind decodes the JSON request body into dst and validates it with
// `validate` struct tags. A body over the size limit yields
// ErrBodyTooLarge, malformed JSON a 400 HTTPError and failed validation a
// ValidationError.
//
//	var in struct {
//	    Name string `json:"name" validate:"required"`
//	}
//	if err := c.Bind(&in); err != nil {
//	    c.AbortWithError(err)
//	    return
//	}
func (c *Context) Bind(dst any) error {
	if dst == nil {
		return ErrNilBindTarget
	}
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return NewHTTPError(http.StatusBadRequest, "request body is empty")
	}

	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		switch {
		case errors.Is(err, ErrBodyTooLarge):
			return err
		case errors.As(err, &maxBytes):
			return fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, maxBytes.Limit)
		case errors.Is(err, io.EOF):
			return NewHTTPError(http.StatusBadRequest, "request body is empty")
		}
		return &HTTPError{Status: http.StatusBadRequest, Message: "malformed JSON body", Err: err}
	}

	return Validate(dst)
}

// Validate checks v against its `validate` struct tags.
func Validate(v any) error {
	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		fields = append(fields, FieldError{
			Field:   ns,
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return &ValidationError{Message: "validation failed", Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return fmt.Sprintf("failed validation (%s)", fe.Tag())
}
