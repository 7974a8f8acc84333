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
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lindb/actorq"
	"github.com/lindb/actorq/bridge"
	"github.com/lindb/actorq/sched"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "exercise desync/sync/future/after/suspend and a pipe against an in-memory counter",
	RunE:  runDemo,
}

func runDemo(_ *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	var opts []sched.Option
	if cfg.MaxThreads > 0 {
		opts = append(opts, sched.WithMaxThreads(cfg.MaxThreads))
	}
	s := sched.NewScheduler(opts...)
	h := actorq.NewOn(s, Counter{})

	if err := h.Desync(func(c *Counter) { c.Value++; c.record("desync +1") }); err != nil {
		return fmt.Errorf("desync: %w", err)
	}
	if err := h.Desync(func(c *Counter) { c.Value++; c.record("desync +1") }); err != nil {
		return fmt.Errorf("desync: %w", err)
	}

	total, err := actorq.Sync(h, func(c *Counter) int { c.record("sync read"); return c.Value })
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	completion := actorq.Future(h, func(c *Counter) sched.Future[int] {
		c.record("future scheduled")
		return readyFuture[int]{v: c.Value}
	})
	futureResult, err := completion.Wait(context.Background())
	if err != nil {
		return fmt.Errorf("future: %w", err)
	}

	after := actorq.After(h, readyFuture[int]{v: 10}, func(c *Counter, delta int) int {
		c.Value += delta
		c.record("after +delta")
		return c.Value
	})
	afterResult, err := after.Wait(context.Background())
	if err != nil {
		return fmt.Errorf("after: %w", err)
	}

	token := s.Suspend(h.Queue())
	if _, err := token.Done().Wait(context.Background()); err != nil {
		return fmt.Errorf("suspend: %w", err)
	}
	token.Resume()
	if err := h.Desync(func(c *Counter) { c.record("post-resume desync") }); err != nil {
		return fmt.Errorf("desync after resume: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	src := bridge.NewSliceSource([]int{1, 2, 3, 4, 5})
	out := bridge.Pipe(ctx, h, src, func(c *Counter, item int, itemErr error) int {
		c.Value += item
		c.record("piped +" + strconv.Itoa(item))
		return c.Value
	})
	var pipedResults []int
	for {
		v, nextErr := out.Next(ctx)
		if nextErr != nil {
			break
		}
		pipedResults = append(pipedResults, v)
	}

	final, err := actorq.Sync(h, func(c *Counter) int { return c.Value })
	if err != nil {
		return fmt.Errorf("final sync: %w", err)
	}
	h.Close()

	t := table.NewWriter()
	t.AppendHeader(table.Row{"step", "result"})
	t.AppendRow(table.Row{"desync x2 then sync", total})
	t.AppendRow(table.Row{"future", futureResult})
	t.AppendRow(table.Row{"after(+10)", afterResult})
	t.AppendRow(table.Row{"piped totals", fmt.Sprint(pipedResults)})
	t.AppendRow(table.Row{"final value", final})
	color.Green("actorqdemo run complete")
	fmt.Println(t.Render())
	return nil
}
