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
	"sync"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/actorq/internal/metrics"
)

var schedLogger = logger.GetLogger("Sched", "Scheduler")

// SchedulerStats is a point-in-time snapshot of a Scheduler's activity, the
// Go shape of the original crate's `impl fmt::Debug for Scheduler` (busy
// bitmap + pending count), consumed by cmd/actorqdemo's status command.
type SchedulerStats struct {
	MaxThreads   int
	WorkersAlive int
	WorkersBusy  int
	RunListDepth int
}

// Scheduler is the shared structure (§4.2): the global run-list of Queues
// awaiting a thread, the pool of Workers, and the configured thread cap.
// Reimplementers are told to also expose an explicit constructor so tests
// can create isolated Schedulers (spec.md §9) rather than relying solely on
// the process-wide default, hence NewScheduler below.
type Scheduler struct {
	runMu   sync.Mutex
	runList []*Queue

	workersMu    sync.Mutex
	workers      []*worker
	maxThreads   int
	nextWorkerID int

	stats *metrics.SchedulerStatistics
}

// NewScheduler creates an isolated Scheduler. Most callers want the
// process-wide default returned by Default(); this constructor exists for
// tests and embedders that need their own worker pool and run-list.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{maxThreads: defaultMaxThreads(), stats: metrics.NewSchedulerStatistics()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics exposes the Scheduler's atomic counters for a host process to
// report, e.g. through cmd/actorqdemo's HTTP status surface.
func (s *Scheduler) Metrics() *metrics.SchedulerStatistics { return s.stats }

var (
	defaultScheduler     *Scheduler
	defaultSchedulerOnce sync.Once
)

// Default returns the process-wide Scheduler (spec.md §6 "Scheduler"),
// created lazily on first use exactly once, the Go analogue of the crate's
// `lazy_static! { static ref SCHEDULER: ... }`.
func Default() *Scheduler {
	defaultSchedulerOnce.Do(func() {
		defaultScheduler = NewScheduler()
	})
	return defaultScheduler
}

// CreateQueue returns a fresh Queue in state Idle, bound to this Scheduler.
func (s *Scheduler) CreateQueue() *Queue {
	s.stats.QueuesCreated.Inc()
	return newQueue(s)
}

// ScheduleAsync appends job to queue's FIFO; if the Queue transitions
// Idle->Pending, it is pushed onto the run-list and a Worker is woken or
// spawned to drain it. Fails with ErrQueuePanicked if the Queue is wedged.
func (s *Scheduler) ScheduleAsync(q *Queue, job Job) error {
	needsSchedule, err := q.submit(job)
	if err != nil {
		return err
	}
	s.stats.JobsSubmitted.Inc()
	if needsSchedule {
		s.scheduleQueue(q)
	}
	return nil
}

// scheduleQueue pushes a Pending Queue onto the run-list and attempts to
// wake or spawn a Worker to service it.
func (s *Scheduler) scheduleQueue(q *Queue) {
	s.runMu.Lock()
	s.runList = append(s.runList, q)
	s.runMu.Unlock()
	s.wakeOrSpawn()
}

// popRunList pops the next Pending Queue off the run-list, or returns nil.
func (s *Scheduler) popRunList() *Queue {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if len(s.runList) == 0 {
		return nil
	}
	q := s.runList[0]
	s.runList = s.runList[1:]
	return q
}

// runListDepth reports the current run-list length, for Stats().
func (s *Scheduler) runListDepth() int {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return len(s.runList)
}

// wakeOrSpawn implements §4.2 "Worker selection": hand the next run-list
// Queue to any idle Worker; if none are idle and the pool is under the cap,
// spawn a new one. If at cap with everyone busy, do nothing — the Queue
// stays on the run-list for the next Worker that finishes.
func (s *Scheduler) wakeOrSpawn() {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()

	for _, w := range s.workers {
		if w.busy.CompareAndSwap(false, true) {
			q := s.popRunList()
			if q == nil {
				w.busy.Store(false)
				return
			}
			w.assign <- q
			return
		}
	}

	if s.maxThreads > 0 && len(s.workers) < s.maxThreads {
		q := s.popRunList()
		if q == nil {
			return
		}
		w := s.spawnWorkerLocked()
		w.busy.Store(true)
		w.assign <- q
		return
	}

	// Single-threaded degenerate mode (maxThreads == 0): the Queue is
	// drained by drainInline on a fresh, short-lived goroutine instead of
	// waiting for a pool thread that will never exist. The drain does not
	// run on the caller's goroutine, and ScheduleAsync returns without
	// waiting for it.
	if s.maxThreads == 0 {
		q := s.popRunList()
		if q == nil {
			return
		}
		go s.drainInline(q)
	}
}

// drainInline runs a Queue to quiescence without a pooled Worker, used only
// when maxThreads == 0. It still runs on its own goroutine so a caller that
// merely issued Desync is not blocked by it, but no persistent pool thread
// is consumed.
func (s *Scheduler) drainInline(q *Queue) {
	w := &worker{sched: s, assign: make(chan *Queue, 1)}
	w.drain(q)
}

// spawnWorkerLocked creates and starts a new Worker. Callers must hold
// workersMu.
func (s *Scheduler) spawnWorkerLocked() *worker {
	s.nextWorkerID++
	w := &worker{
		sched:  s,
		id:     s.nextWorkerID,
		assign: make(chan *Queue, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.workers = append(s.workers, w)
	s.stats.WorkersSpawned.Inc()
	s.stats.WorkersAlive.Inc()
	go w.loop()
	return w
}

// SpawnThread explicitly adds a Worker to the pool, bypassing the cap check
// (spec.md §6 "spawn_thread").
func (s *Scheduler) SpawnThread() {
	s.workersMu.Lock()
	defer s.workersMu.Unlock()
	s.spawnWorkerLocked()
}

// SetMaxThreads adjusts the cap and reschedules any run-list Queues that
// can now claim a newly available slot.
func (s *Scheduler) SetMaxThreads(n int) {
	s.workersMu.Lock()
	if n >= 0 {
		s.maxThreads = n
	}
	s.workersMu.Unlock()
	// Bounded by the current backlog depth: wakeOrSpawn claims at most one
	// run-list entry per call, and does nothing once the pool is back at
	// capacity with everyone busy.
	for n := s.runListDepth(); n > 0; n-- {
		s.wakeOrSpawn()
	}
}

// DespawnIfOver trims the Worker pool down to the cap. Callers must not call
// this from within a Job body running on one of this Scheduler's own
// Workers (spec.md §4.2): it blocks until every despawned Worker's loop has
// actually returned, the same way workerPool.stopWorkers() in
// internal/concurrent/pool.go waits on a sync.WaitGroup rather than just
// signaling its workers to stop. A Worker cannot wait on its own exit,
// hence the "not from a worker" caller contract; this package does not
// detect the violation at runtime, the same trade-off DESIGN.md records
// for re-entrant Sync.
func (s *Scheduler) DespawnIfOver() {
	var toStop []*worker
	s.workersMu.Lock()
	for len(s.workers) > s.maxThreads {
		n := len(s.workers)
		w := s.workers[n-1]
		s.workers = s.workers[:n-1]
		toStop = append(toStop, w)
	}
	s.workersMu.Unlock()

	var wg sync.WaitGroup
	for _, w := range toStop {
		wg.Add(1)
		close(w.quit)
		go func(w *worker) {
			defer wg.Done()
			<-w.done
		}(w)
	}
	wg.Wait()
}

// Stats returns a snapshot of pool occupancy, the Go analogue of the
// original `impl fmt::Debug for Scheduler`.
func (s *Scheduler) Stats() SchedulerStats {
	s.workersMu.Lock()
	alive := len(s.workers)
	busy := 0
	for _, w := range s.workers {
		if w.busy.Load() {
			busy++
		}
	}
	maxThreads := s.maxThreads
	s.workersMu.Unlock()
	return SchedulerStats{
		MaxThreads:   maxThreads,
		WorkersAlive: alive,
		WorkersBusy:  busy,
		RunListDepth: s.runListDepth(),
	}
}

// Suspend submits an async job that increments queue's suspension count;
// the returned ResumeToken's Done() completion resolves once the suspend
// has taken effect (spec.md §4.2 "suspend", §9 supplement #3). Resume is
// idempotent and safe to call even if Done() never observed fire.
func (s *Scheduler) Suspend(q *Queue) *ResumeToken {
	done := NewCompletionHandle[struct{}]()
	token := &ResumeToken{q: q, s: s, done: done}

	job := once(func() {
		if q.beginSuspend() {
			done.Complete(struct{}{})
		} else {
			done.Cancel()
		}
	})
	if err := s.ScheduleAsync(q, job); err != nil {
		done.Cancel()
	}
	return token
}

// resume is ResumeToken.Resume()'s scheduler-side half (spec.md §4.2
// "resume"). It is unexported: callers only reach it through the token
// returned by Suspend, per the suspend-token discipline decided in
// DESIGN.md.
func (s *Scheduler) resume(q *Queue) {
	reschedule, err := q.endResume()
	if err != nil {
		schedLogger.Warn("resume called without a matching suspend", logger.String("queue", q.ID.String()))
		return
	}
	if reschedule {
		s.scheduleQueue(q)
	}
}
