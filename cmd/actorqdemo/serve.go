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
	"net/http"

	ginpprof "github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/felixge/fgprof"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/actorq/sched"
)

var serveLogger = logger.GetLogger("Demo", "Serve")

var pprofEnabled bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "expose the process-wide Scheduler's status over HTTP",
	RunE:  serve,
}

func init() {
	serveCmd.Flags().BoolVar(&pprofEnabled, "pprof", false, "mount pprof and fgprof profiling endpoints")
}

// serve runs a gin HTTP server exposing /status as JSON, the same shape
// status.go renders as a table, plus optional profiling endpoints — the Go
// analogue of cmd/lind's --pprof flag and internal/api's explore handlers,
// scaled down to this demo's single status surface.
func serve(_ *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/status", func(c *gin.Context) {
		stats := sched.Default().Stats()
		c.JSON(http.StatusOK, stats)
	})

	if pprofEnabled {
		ginpprof.Register(router)
		router.GET("/debug/fgprof", gin.WrapH(fgprof.Handler()))
	}

	serveLogger.Info("actorqdemo listening", logger.String("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
