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

// Package actorq binds an owned datum of any type to a serializing job
// queue (sched.Queue), giving every operation on that datum actor-style
// exclusive access without the caller ever holding a lock (spec.md §4.5
// "Handle").
package actorq

import (
	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/actorq/sched"
)

var handleLogger = logger.GetLogger("Actorq", "Handle")

// Handle owns a datum of type T and the Queue that serializes every
// operation against it. The datum's address is stable for the Handle's
// lifetime: Handle stores a *T that Go's collector never relocates out from
// under a Job mid-run.
type Handle[T any] struct {
	s      *sched.Scheduler
	q      *sched.Queue
	data   *T
	closed atomic.Bool
}

// New boxes t and creates a Handle bound to a fresh Queue on the
// process-wide Scheduler (spec.md §4.5 "new").
func New[T any](t T) *Handle[T] {
	return NewOn(sched.Default(), t)
}

// NewOn is New, against an explicit Scheduler — the constructor spec.md §9
// asks reimplementers to expose so tests can use an isolated Scheduler
// instead of the process-wide default.
func NewOn[T any](s *sched.Scheduler, t T) *Handle[T] {
	data := new(T)
	*data = t
	return &Handle[T]{s: s, q: s.CreateQueue(), data: data}
}

// Queue returns the Handle's underlying Queue, for callers that also want
// to use the bridge package or the sched package's raw free functions
// against the same serialization domain.
func (h *Handle[T]) Queue() *sched.Queue { return h.q }

// Scheduler returns the Scheduler this Handle's Queue is bound to, so the
// bridge package can locate (or create) that Scheduler's stream monitor.
func (h *Handle[T]) Scheduler() *sched.Scheduler { return h.s }

// Desync enqueues f(&t) as an async job and returns immediately (spec.md
// §4.5 "desync"). f holds exclusive access to the datum only for the
// duration of this one call.
func (h *Handle[T]) Desync(f func(t *T)) error {
	data := h.data
	return h.s.ScheduleAsync(h.q, sched.Once(func() { f(data) }))
}

// Sync runs f(&t) with the datum's exclusive access, queue-serialized with
// every other submission on h, blocking until it completes (spec.md §4.5
// "sync"). R is a type parameter of this free function rather than of
// Handle itself — Go methods cannot introduce their own type parameters.
func Sync[T, R any](h *Handle[T], f func(t *T) R) (R, error) {
	var result R
	err := h.s.ScheduleSync(h.q, func() { result = f(h.data) })
	return result, err
}

// SyncVoid is Sync for callers that do not need a result, avoiding having
// to spell out Sync's two type parameters at the call site.
func (h *Handle[T]) SyncVoid(f func(t *T)) error {
	return h.s.ScheduleSync(h.q, func() { f(h.data) })
}

// Future schedules f to be invoked once h's Queue reaches this job; f
// returns a sched.Future[R] that is polled (with exclusive access to the
// datum on each poll) until it resolves (spec.md §4.5 "future"). The
// returned CompletionHandle is itself a sched.Future[R].
func Future[T, R any](h *Handle[T], f func(t *T) sched.Future[R]) *sched.CompletionHandle[R] {
	data := h.data
	return sched.ScheduleFuture[R](h.s, h.q, func() sched.Future[R] { return f(data) })
}

// After awaits fut, then runs f(&t, result) once it resolves (spec.md §4.5
// "after"). fut resolving happens-before f runs, and f happens-before any
// later submission on h completes (spec.md §5 ordering guarantee 4).
func After[T, A, R any](h *Handle[T], fut sched.Future[A], f func(t *T, val A) R) *sched.CompletionHandle[R] {
	data := h.data
	return sched.ScheduleAfter[A, R](h.s, h.q, fut, func(val A) R { return f(data, val) })
}

// Close drains h's Queue synchronously — every previously submitted job
// finishes before Close returns — then releases the datum (spec.md §4.5
// "drop"). Go has no destructors, so Close is the explicit analogue of the
// original's Drop impl; calling it more than once is a no-op.
//
// Close tolerates the Queue having panicked and never re-panics itself,
// satisfying the "drop must not itself panic, even while the calling
// goroutine is already unwinding from one" requirement without needing a
// separate panic-free variant: ScheduleSync's ErrQueuePanicked is a plain
// error here, not a Go panic, and is logged and otherwise discarded.
func (h *Handle[T]) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if err := h.s.ScheduleSync(h.q, func() {}); err != nil {
		handleLogger.Warn("handle closed against an already-panicked queue", logger.String("queue", h.q.ID.String()))
	}
}
