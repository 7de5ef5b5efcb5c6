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
// Package config loads the process configuration.
//
// Sources are applied in a fixed order, each overriding the previous one
// key by key:
//
//  1. [Default]
//  2. files and in-memory content, in the order given (YAML, TOML, JSON)
//  3. .env files, which never override variables already set
//  4. ROUTED_* environment variables
//
// The result is validated and translated into functional options for the
// engine, the server, the lifecycle manager and the logger:
//
//	cfg, err := config.Load(ctx,
//	    config.WithOptionalFile("routed.yaml"),
//	    config.WithDotEnv(".env"),
//	)
//	if err != nil {
//	    return err
//	}
//	logger := logging.MustNew(cfg.LoggingOptions()...)
//	lm := lifecycle.New(cfg.LifecycleOptions(logger.Logger())...)
//	e := router.MustNew(cfg.EngineOptions(logger.Logger(), lm)...)
//
// Environment variables follow the section and field names, for example
// ROUTED_SERVER_ADDR, ROUTED_SERVER_SHUTDOWN_GRACE=20s or
// ROUTED_ROUTER_TRUSTED_PROXIES=10.0.0.0/8,192.168.0.0/16.
package config
