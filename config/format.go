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
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Format names a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

type decodeFunc func(data []byte, v any) error

var decoders = map[Format]decodeFunc{
	FormatYAML: yaml.Unmarshal,
	FormatTOML: toml.Unmarshal,
	FormatJSON: json.Unmarshal,
}

var extensionFormats = map[string]Format{
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".toml": FormatTOML,
	".json": FormatJSON,
}

func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}
	return "", fmt.Errorf("cannot detect format from extension %q; use WithFileAs() to specify format explicitly", ext)
}

func decoderFor(format Format) (decodeFunc, error) {
	dec, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return dec, nil
}
