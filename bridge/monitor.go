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

package bridge

import (
	"sync"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/actorq/internal/metrics"
	"github.com/lindb/actorq/sched"
)

var (
	bridgeLogger = logger.GetLogger("Bridge", "Monitor")
	bridgeStats  = metrics.NewBridgeStatistics()
)

// Monitor supervises every PipeIn/Pipe bridge running against one
// Scheduler: one long-lived goroutine per Scheduler, parked on a condition
// variable whenever no bridge is active and woken the instant the active
// count changes (spec.md §9 Open Question, decided in DESIGN.md: the
// monitor never shuts itself down). Grounded on pipe.rs's process-wide
// PipeMonitor, generalized from one-per-process to one-per-Scheduler since
// tests construct isolated Schedulers.
//
// Each bridge's actual pumping runs on its own goroutine (PipeIn/Pipe
// spawn it): Source.Next blocks, so a single goroutine cannot drive more
// than one Source at a time. Monitor's loop is lifecycle bookkeeping, not a
// poll loop — it exists to log the bridge set's idle/active transitions and
// give the Scheduler a single place that knows whether any bridge is live.
type Monitor struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active int
}

var (
	monitorsMu sync.Mutex
	monitors   = map[*sched.Scheduler]*Monitor{}
)

// monitorFor returns the Monitor bound to s, creating and starting it on
// first use.
func monitorFor(s *sched.Scheduler) *Monitor {
	monitorsMu.Lock()
	defer monitorsMu.Unlock()
	if m, ok := monitors[s]; ok {
		return m
	}
	m := &Monitor{}
	m.cond = sync.NewCond(&m.mu)
	go m.loop()
	monitors[s] = m
	return m
}

// loop parks until the active-bridge count changes and logs the idle<->
// active transition. It never exits while its Scheduler is alive.
func (m *Monitor) loop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := 0
	for {
		for m.active == last {
			m.cond.Wait()
		}
		if last == 0 {
			bridgeLogger.Info("bridge set active")
		} else if m.active == 0 {
			bridgeLogger.Info("bridge set idle")
		}
		last = m.active
	}
}

// spawn starts run on its own goroutine, tracked by the Monitor for the
// duration of its run.
func (m *Monitor) spawn(run func()) {
	m.mu.Lock()
	m.active++
	bridgeStats.BridgesActive.Inc()
	m.cond.Broadcast()
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			m.active--
			bridgeStats.BridgesActive.Dec()
			m.cond.Broadcast()
			m.mu.Unlock()
		}()
		run()
	}()
}
