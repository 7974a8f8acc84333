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

// Command actorqdemo exercises the actorq library end to end: desync,
// sync, future, after, suspend/resume and the stream bridge against a
// single in-memory counter, plus an HTTP status surface — the Go analogue
// of cmd/lind's standalone/storage command tree, scaled to this library's
// single concurrency primitive instead of a whole clustered database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "actorqdemo",
	Short: "exercise the actorq per-datum serializing job scheduler",
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "write a default actorqdemo.toml",
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = defaultConfigFile
		}
		return WriteConfig(path, NewDefaultConfig())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file path, default is %s", defaultConfigFile))
	rootCmd.AddCommand(runCmd, serveCmd, statusCmd, initConfigCmd)
}

func main() {
	initAutoMaxProcs()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
