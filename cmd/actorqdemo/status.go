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

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/lindb/actorq/sched"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the process-wide Scheduler's worker-pool occupancy",
	RunE:  printStatus,
}

func printStatus(_ *cobra.Command, _ []string) error {
	stats := sched.Default().Stats()
	m := sched.Default().Metrics()

	t := table.NewWriter()
	t.AppendHeader(table.Row{"field", "value"})
	t.AppendRow(table.Row{"max threads", stats.MaxThreads})
	t.AppendRow(table.Row{"workers alive", stats.WorkersAlive})
	t.AppendRow(table.Row{"workers busy", colorBusy(stats.WorkersBusy, stats.WorkersAlive)})
	t.AppendRow(table.Row{"run-list depth", stats.RunListDepth})
	t.AppendRow(table.Row{"queues created", m.QueuesCreated.Load()})
	t.AppendRow(table.Row{"jobs submitted", m.JobsSubmitted.Load()})
	t.AppendRow(table.Row{"jobs panicked", m.JobsPanicked.Load()})
	fmt.Println(t.Render())
	return nil
}

func colorBusy(busy, alive int) string {
	s := fmt.Sprintf("%d/%d", busy, alive)
	if alive == 0 {
		return s
	}
	if busy == alive {
		return color.RedString(s)
	}
	if busy == 0 {
		return color.GreenString(s)
	}
	return color.YellowString(s)
}
