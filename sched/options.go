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

package sched

import "github.com/shirou/gopsutil/v3/cpu"

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithMaxThreads overrides the worker cap. The default is
// max(8, 2*logicalCPUs), mirroring the capacity LinDB sizes its own
// concurrent pools to. A cap of exactly 0 selects the single-threaded
// degenerate mode (spec.md §6): submissions drain inline instead of
// waiting on a pool thread that will never exist. The crate this is ported
// from makes that choice with a wasm32 build tag; this port exposes it as
// an explicit Option instead, since Go has no equivalent "threads disabled"
// target worth special-casing at compile time.
func WithMaxThreads(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxThreads = n
		}
	}
}

func defaultMaxThreads() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		return 8
	}
	if byCPU := n * 2; byCPU > 8 {
		return byCPU
	}
	return 8
}
