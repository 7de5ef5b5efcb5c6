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
package binding

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kingwill101/routed-sub001/router"
)

// Source identifies where a value was bound from.
type Source string

// Binding sources. The tag name of a scalar source equals its value.
const (
	SourcePath   Source = "path"
	SourceQuery  Source = "query"
	SourceHeader Source = "header"
	SourceForm   Source = "form"
	SourceBody   Source = "body"
)

var (
	// ErrNotPointer is returned by the To functions when dst is not a
	// non-nil pointer.
	ErrNotPointer = errors.New("binding: destination must be a non-nil pointer")

	// ErrUnsupportedMediaType is wrapped by the 415 error returned for a
	// Content-Type without a codec.
	ErrUnsupportedMediaType = errors.New("binding: unsupported media type")
)

// BindError reports a value that could not be decoded from a source.
type BindError struct {
	Source Source
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding: %s: %v", e.Source, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// Query binds the query string to a new T.
func Query[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, QueryTo)
}

// Path binds the captured path parameters to a new T.
func Path[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, PathTo)
}

// Header binds request headers to a new T. Tag names match header names
// case-insensitively.
func Header[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, HeaderTo)
}

// Form binds an urlencoded or multipart form body to a new T.
func Form[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, FormTo)
}

// Body decodes the request body into a new T using the codec registered
// for its Content-Type.
func Body[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, BodyTo)
}

// Bind fills a new T from path, query and headers, then from the body
// when the request carries one. Later sources override earlier ones.
func Bind[T any](c *router.Context, opts ...Option) (T, error) {
	return bindNew[T](c, opts, BindTo)
}

// QueryTo binds the query string to dst.
func QueryTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(c.Request.URL.Query(), dst, SourceQuery, cfg); err != nil {
		return err
	}
	return cfg.validate(dst)
}

// PathTo binds the captured path parameters to dst.
func PathTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeMap(pathParams(c), dst, SourcePath, cfg); err != nil {
		return err
	}
	return cfg.validate(dst)
}

// HeaderTo binds request headers to dst.
func HeaderTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(c.Request.Header, dst, SourceHeader, cfg); err != nil {
		return err
	}
	return cfg.validate(dst)
}

// FormTo binds an urlencoded or multipart form body to dst.
func FormTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeForm(c.Request, dst, cfg); err != nil {
		return err
	}
	return cfg.validate(dst)
}

// BodyTo decodes the request body into dst.
func BodyTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeBody(c.Request, dst, cfg); err != nil {
		return err
	}
	return cfg.validate(dst)
}

// BindTo fills dst from every source. Validation runs once at the end.
func BindTo(c *router.Context, dst any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := checkPointer(dst); err != nil {
		return err
	}

	if err := decodeMap(pathParams(c), dst, SourcePath, cfg); err != nil {
		return err
	}
	if err := decodeValues(c.Request.URL.Query(), dst, SourceQuery, cfg); err != nil {
		return err
	}
	if err := decodeValues(c.Request.Header, dst, SourceHeader, cfg); err != nil {
		return err
	}
	if hasBody(c.Request) {
		if err := decodeBody(c.Request, dst, cfg); err != nil {
			return err
		}
	}
	return cfg.validate(dst)
}

// bindNew allocates the target for the generic helpers. A pointer T is
// allocated and filled in place so proto messages bind as *pb.Msg.
func bindNew[T any](c *router.Context, opts []Option, to func(*router.Context, any, ...Option) error) (T, error) {
	var out T
	target := any(&out)
	if typ := reflect.TypeFor[T](); typ.Kind() == reflect.Pointer {
		out = reflect.New(typ.Elem()).Interface().(T)
		target = out
	}
	if err := to(c, target, opts...); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func checkPointer(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrNotPointer
	}
	return nil
}

func pathParams(c *router.Context) map[string]any {
	raw := c.Params()
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	return m
}

func hasBody(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return false
	}
	return req.ContentLength != 0
}

// decodeValues flattens multi-valued input: one value binds as a string,
// several as a slice.
func decodeValues(values map[string][]string, dst any, src Source, cfg *config) error {
	m := make(map[string]any, len(values))
	for k, vs := range values {
		switch len(vs) {
		case 0:
		case 1:
			m[k] = vs[0]
		default:
			m[k] = vs
		}
	}
	return decodeMap(m, dst, src, cfg)
}

func decodeMap(m map[string]any, dst any, src Source, cfg *config) error {
	if err := checkPointer(dst); err != nil {
		return err
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          string(src),
		WeaklyTypedInput: true,
		ErrorUnused:      cfg.strict && (src == SourceQuery || src == SourceForm),
		Result:           dst,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(m); err != nil {
		return &router.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "invalid " + string(src) + " parameters",
			Err:     &BindError{Source: src, Err: err},
		}
	}
	return nil
}
