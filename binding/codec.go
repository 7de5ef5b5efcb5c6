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
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"

	"github.com/kingwill101/routed-sub001/router"
)

// Media types with a built-in codec.
const (
	MediaJSON        = "application/json"
	MediaXML         = "application/xml"
	MediaYAML        = "application/yaml"
	MediaTOML        = "application/toml"
	MediaMsgPack     = "application/msgpack"
	MediaProtobuf    = "application/x-protobuf"
	MediaForm        = "application/x-www-form-urlencoded"
	MediaMultipart   = "multipart/form-data"
	defaultMediaType = MediaJSON
)

// Codec decodes a complete request body.
type Codec interface {
	// Name is used in client error messages, as in "malformed JSON body".
	Name() string
	Decode(data []byte, dst any) error
}

type funcCodec struct {
	name string
	fn   func([]byte, any) error
}

func (f funcCodec) Name() string                      { return f.name }
func (f funcCodec) Decode(data []byte, dst any) error { return f.fn(data, dst) }

// NewCodec returns a Codec backed by fn.
func NewCodec(name string, fn func(data []byte, dst any) error) Codec {
	return funcCodec{name: name, fn: fn}
}

type jsonCodec struct {
	strict    bool
	useNumber bool
}

func (jsonCodec) Name() string { return "JSON" }

func (j jsonCodec) Decode(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if j.strict {
		dec.DisallowUnknownFields()
	}
	if j.useNumber {
		dec.UseNumber()
	}
	return dec.Decode(dst)
}

var errNotProto = errors.New("destination does not implement proto.Message")

func decodeProto(data []byte, dst any) error {
	m, ok := dst.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", errNotProto, dst)
	}
	return proto.Unmarshal(data, m)
}

var (
	codecsMu sync.RWMutex
	codecs   = map[string]Codec{
		MediaJSON:                         jsonCodec{},
		MediaXML:                          NewCodec("XML", xml.Unmarshal),
		"text/xml":                        NewCodec("XML", xml.Unmarshal),
		MediaYAML:                         NewCodec("YAML", yaml.Unmarshal),
		"application/x-yaml":              NewCodec("YAML", yaml.Unmarshal),
		"text/yaml":                       NewCodec("YAML", yaml.Unmarshal),
		MediaTOML:                         NewCodec("TOML", toml.Unmarshal),
		MediaMsgPack:                      NewCodec("MessagePack", msgpack.Unmarshal),
		"application/x-msgpack":           NewCodec("MessagePack", msgpack.Unmarshal),
		"application/vnd.msgpack":         NewCodec("MessagePack", msgpack.Unmarshal),
		MediaProtobuf:                     NewCodec("protobuf", decodeProto),
		"application/protobuf":            NewCodec("protobuf", decodeProto),
		"application/vnd.google.protobuf": NewCodec("protobuf", decodeProto),
	}
)

// RegisterCodec sets the codec for a media type, replacing any built-in
// one. Parameters such as charset are ignored when matching.
func RegisterCodec(mediaType string, c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()
	codecs[strings.ToLower(mediaType)] = c
}

// lookupCodec finds the codec for mt, falling back to structured syntax
// suffixes such as application/problem+json.
func lookupCodec(mt string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()
	if c, ok := codecs[mt]; ok {
		return c, true
	}
	if i := strings.LastIndexByte(mt, '+'); i >= 0 {
		switch mt[i+1:] {
		case "json":
			c, ok := codecs[MediaJSON]
			return c, ok
		case "xml":
			c, ok := codecs[MediaXML]
			return c, ok
		case "yaml":
			c, ok := codecs[MediaYAML]
			return c, ok
		}
	}
	return nil, false
}

func mediaType(req *http.Request) (string, error) {
	ct := req.Header.Get("Content-Type")
	if ct == "" {
		return defaultMediaType, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", router.NewHTTPError(http.StatusBadRequest, "malformed Content-Type header")
	}
	return mt, nil
}

func decodeBody(req *http.Request, dst any, cfg *config) error {
	if err := checkPointer(dst); err != nil {
		return err
	}
	mt, err := mediaType(req)
	if err != nil {
		return err
	}
	if mt == MediaForm || mt == MediaMultipart {
		return decodeForm(req, dst, cfg)
	}

	codec, ok := lookupCodec(mt)
	if !ok {
		return &router.HTTPError{
			Status:  http.StatusUnsupportedMediaType,
			Message: "unsupported media type " + mt,
			Err:     ErrUnsupportedMediaType,
		}
	}
	if jc, ok := codec.(jsonCodec); ok {
		jc.strict = cfg.strict
		jc.useNumber = cfg.jsonNumber
		codec = jc
	}

	data, err := readBody(req)
	if err != nil {
		return err
	}
	if err := codec.Decode(data, dst); err != nil {
		return &router.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "malformed " + codec.Name() + " body",
			Err:     &BindError{Source: SourceBody, Err: err},
		}
	}
	return nil
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, router.NewHTTPError(http.StatusBadRequest, "request body is empty")
	}
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, bodyReadError(err)
	}
	if len(data) == 0 {
		return nil, router.NewHTTPError(http.StatusBadRequest, "request body is empty")
	}
	return data, nil
}

func bodyReadError(err error) error {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, router.ErrBodyTooLarge):
		return err
	case errors.As(err, &maxBytes):
		return fmt.Errorf("%w: limit %d bytes", router.ErrBodyTooLarge, maxBytes.Limit)
	}
	return &router.HTTPError{Status: http.StatusBadRequest, Message: "failed to read request body", Err: err}
}

func decodeForm(req *http.Request, dst any, cfg *config) error {
	mt, err := mediaType(req)
	if err != nil {
		return err
	}
	if mt == MediaMultipart {
		err = req.ParseMultipartForm(cfg.maxMemory)
	} else {
		err = req.ParseForm()
	}
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.Is(err, router.ErrBodyTooLarge) || errors.As(err, &maxBytes) {
			return bodyReadError(err)
		}
		return &router.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "malformed form body",
			Err:     &BindError{Source: SourceForm, Err: err},
		}
	}
	return decodeValues(req.PostForm, dst, SourceForm, cfg)
}
