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
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
)

// DefaultEnvPrefix prefixes every environment variable Load reads.
const DefaultEnvPrefix = "ROUTED_"

// Option configures Load.
type Option func(l *loader) error

type fileSource struct {
	path     string
	data     []byte
	format   Format
	optional bool
}

type loader struct {
	files     []fileSource
	dotenv    []string
	envPrefix string
	environ   map[string]string
	noEnv     bool
}

// WithFile adds a file whose format follows its extension (.yaml, .yml,
// .toml, .json). Later files override earlier ones key by key. $VAR and
// ${VAR} in the path are expanded.
func WithFile(path string) Option {
	return func(l *loader) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return NewError("file", "detect-format", err)
		}
		l.files = append(l.files, fileSource{path: path, format: format})
		return nil
	}
}

// WithOptionalFile is WithFile for a file that may not exist.
func WithOptionalFile(path string) Option {
	return func(l *loader) error {
		if err := WithFile(path)(l); err != nil {
			return err
		}
		l.files[len(l.files)-1].optional = true
		return nil
	}
}

// WithFileAs adds a file decoded as format regardless of its extension.
func WithFileAs(path string, format Format) Option {
	return func(l *loader) error {
		if _, err := decoderFor(format); err != nil {
			return NewError("file", "get-decoder", err)
		}
		l.files = append(l.files, fileSource{path: os.ExpandEnv(path), format: format})
		return nil
	}
}

// WithContent adds in-memory configuration, ordered like files.
func WithContent(data []byte, format Format) Option {
	return func(l *loader) error {
		if _, err := decoderFor(format); err != nil {
			return NewError("content", "get-decoder", err)
		}
		l.files = append(l.files, fileSource{data: data, format: format})
		return nil
	}
}

// WithDotEnv reads .env files before the environment. Variables already
// set in the environment win, and missing files are skipped.
func WithDotEnv(paths ...string) Option {
	return func(l *loader) error {
		l.dotenv = append(l.dotenv, paths...)
		return nil
	}
}

// WithEnvPrefix replaces [DefaultEnvPrefix].
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) error {
		l.envPrefix = prefix
		return nil
	}
}

// WithEnvironment reads variables from vars instead of the process
// environment.
func WithEnvironment(vars map[string]string) Option {
	return func(l *loader) error {
		if vars == nil {
			return errors.New("environment cannot be nil")
		}
		l.environ = vars
		return nil
	}
}

// WithoutEnv skips the environment and .env files entirely.
func WithoutEnv() Option {
	return func(l *loader) error {
		l.noEnv = true
		return nil
	}
}

// Load builds a Config from, in order: [Default], every file or content
// source, .env files, then ROUTED_* environment variables. The result is
// validated before it is returned.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	l := &loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}

	cfg := Default()

	values, err := l.loadFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) > 0 {
		if err := decode(values, &cfg); err != nil {
			return nil, NewError("files", "bind", err)
		}
	}

	if !l.noEnv {
		if err := l.loadEnv(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context, opts ...Option) *Config {
	cfg, err := Load(ctx, opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (l *loader) loadFiles(ctx context.Context) (map[string]any, error) {
	merged := map[string]any{}
	for i, f := range l.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := f.path
		if name == "" {
			name = fmt.Sprintf("content[%d]", i)
		}

		data := f.data
		if f.path != "" {
			b, err := os.ReadFile(f.path)
			if f.optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, NewError(name, "load", err)
			}
			data = b
		}

		dec, err := decoderFor(f.format)
		if err != nil {
			return nil, NewError(name, "get-decoder", err)
		}
		var m map[string]any
		if err := dec(data, &m); err != nil {
			return nil, NewError(name, "decode", err)
		}

		if err := mergo.Merge(&merged, normalizeKeys(m), mergo.WithOverride); err != nil {
			return nil, NewError(name, "merge", err)
		}
	}
	return merged, nil
}

func (l *loader) loadEnv(cfg *Config) error {
	environ := l.environ
	if environ == nil {
		environ = env.ToMap(os.Environ())
	} else {
		environ = cloneMap(environ)
	}

	for _, path := range l.dotenv {
		vars, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return NewError(path, "load", err)
		}
		for k, v := range vars {
			if _, set := environ[k]; !set {
				environ[k] = v
			}
		}
	}

	err := env.ParseWithOptions(cfg, env.Options{
		Prefix:      l.envPrefix,
		Environment: environ,
	})
	if err != nil {
		return NewError("env", "bind", err)
	}
	return nil
}

func decode(values map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// normalizeKeys lowercases keys at every depth so "Server.Addr" and
// "server.addr" land on the same field.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("config"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field rule and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewError("config", "validate", err)
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		errs = append(errs, NewFieldError("config", field, "validate",
			fmt.Errorf("failed %q rule (value %v)", fe.Tag(), fe.Value())))
	}
	return errors.Join(errs...)
}
