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

import (
	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"
)

var workerLogger = logger.GetLogger("Sched", "Worker")

// worker is a pool goroutine that drains Queues handed to it by the
// Scheduler's run-list dispatch (§4.4). Grounded on
// internal/concurrent/pool.go's worker.process(), adapted from "run one
// Task" to "drain one Queue until it yields".
type worker struct {
	sched *Scheduler
	id    int

	busy atomic.Bool

	assign chan *Queue
	quit   chan struct{}
	done   chan struct{}
}

// loop is the Worker's lifecycle (§4.4 steps 2-6): park until handed a
// Queue, drain it, try to claim another off the run-list, or park again.
// done is closed on every return path so DespawnIfOver can block until the
// goroutine has actually exited, not just signaled to.
func (w *worker) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.quit:
			w.sched.stats.WorkersAlive.Dec()
			return
		case q := <-w.assign:
			w.drain(q)
			w.busy.Store(false)
			w.sched.wakeOrSpawn()
		}
	}
}

// drain runs q's Pending->Running drain loop: dequeue-and-run until the
// Queue drains empty (Idle), suspends (Suspended), or yields
// (WaitingForWake), per §4.4 step 4.
func (w *worker) drain(q *Queue) {
	if !q.beginRun() {
		// Stale run-list entry: a sync caller's DrainOnThisThread already
		// claimed this Queue (invariant 2).
		return
	}
	for {
		job, ok := q.nextJob()
		if !ok {
			if pushRunList := q.finishDraining(); pushRunList {
				w.sched.scheduleQueue(q)
			}
			return
		}

		poll := runJob(q, job)
		if q.isPanicked() {
			w.sched.stats.JobsPanicked.Inc()
			return
		}
		w.sched.stats.JobsCompleted.Inc()

		if keepGoing := q.settleAfterRun(poll); !keepGoing {
			return
		}
	}
}

// runJob invokes job.Run, recovering a panic into the Queue's Panicked
// state rather than crashing the calling goroutine, matching
// workerPool.execTask's recover()+panicHandle pattern in
// internal/concurrent/pool.go. The panic is logged, not re-raised: a
// library whose one goroutine per Worker can be silently lost to an
// unrecovered panic would eventually starve its own pool. Shared by both
// the pool Worker's drain loop and a DrainOnThisThread sync caller.
func runJob(q *Queue, job Job) (poll Poll) {
	defer func() {
		if r := recover(); r != nil {
			workerLogger.Error("job panicked, queue is now permanently wedged",
				logger.Any("recover", r), logger.String("queue", q.ID.String()), logger.Stack())
			q.markPanicked()
			poll = Ready
		}
	}()
	return job.Run(q.waker())
}
