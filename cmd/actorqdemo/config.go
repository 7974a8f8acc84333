// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v7"
)

const defaultConfigFile = "actorqdemo.toml"

// Config is actorqdemo's configuration: the run/serve commands' Scheduler
// sizing and HTTP listen address. Grounded on config/monitor.go's
// toml+env double-tagged struct shape, minus LinDB's own ltoml.Duration
// (this demo has no durations worth a custom TextUnmarshaler).
type Config struct {
	MaxThreads int    `toml:"max-threads" env:"MAX_THREADS"`
	ListenAddr string `toml:"listen-addr" env:"LISTEN_ADDR"`
	LogLevel   string `toml:"log-level" env:"LOG_LEVEL"`
}

// NewDefaultConfig returns actorqdemo's out-of-the-box configuration.
func NewDefaultConfig() *Config {
	return &Config{
		MaxThreads: 0, // 0 selects the Scheduler's own default sizing
		ListenAddr: ":8080",
		LogLevel:   "info",
	}
}

// LoadConfig decodes path as TOML into a default Config, then lets
// environment variables (ACTORQDEMO_*-prefixed, see env.Options below)
// override individual fields — the same toml-then-env layering
// config.LoadAndSetStandAloneConfig applies to LinDB's own config structs.
// An empty path falls back to defaultConfigFile when that file exists.
func LoadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ACTORQDEMO_"}); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}
	return cfg, nil
}

// WriteConfig renders cfg as TOML to path, failing if path already exists —
// the same guard checkExistenceOf applies before LinDB's own init-config
// commands write a fresh default file.
func WriteConfig(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
