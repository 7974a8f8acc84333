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

// Package metrics holds the plain atomic counters the scheduler and bridge
// packages report through, in the shape of the teacher's
// *metrics.ConcurrentStatistics (internal/concurrent/pool.go) minus its
// flatbuffers wire-export layer: this library has no monitoring wire
// protocol to feed, so the counters stop at being readable Go values.
package metrics

import "go.uber.org/atomic"

// SchedulerStatistics tracks scheduler/worker activity.
type SchedulerStatistics struct {
	QueuesCreated  atomic.Int64
	JobsSubmitted  atomic.Int64
	JobsCompleted  atomic.Int64
	JobsPanicked   atomic.Int64
	WorkersSpawned atomic.Int64
	WorkersAlive   atomic.Int64
	SyncImmediate  atomic.Int64
	SyncDrain      atomic.Int64
	SyncBackground atomic.Int64
}

// NewSchedulerStatistics returns a zeroed statistics block.
func NewSchedulerStatistics() *SchedulerStatistics {
	return &SchedulerStatistics{}
}

// BridgeStatistics tracks stream-to-queue bridge activity.
type BridgeStatistics struct {
	BridgesActive    atomic.Int64
	ItemsForwarded   atomic.Int64
	ErrorsForwarded  atomic.Int64
	StreamsCompleted atomic.Int64
}

// NewBridgeStatistics returns a zeroed statistics block.
func NewBridgeStatistics() *BridgeStatistics {
	return &BridgeStatistics{}
}
