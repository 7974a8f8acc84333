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

// Go methods cannot introduce their own type parameters, so the
// Future/After half of §4.2 ("schedule_future", "schedule_after") is
// exposed as package-level generic functions rather than Scheduler methods,
// the one place this port's surface necessarily differs in shape from
// spec.md's method-call notation while keeping identical semantics.

// cancelable is implemented by Futures (notably CompletionHandle[T]) whose
// Ready poll can still mean "the producer was dropped", so a hosted job can
// propagate cancellation instead of completing with a zero value.
type cancelable interface {
	Canceled() bool
}

// hostedFutureJob is the Job a Queue runs for ScheduleFuture/ScheduleAfter:
// it lazily creates the Future on first poll (spec.md §4.2: "when the Queue
// reaches it, invokes make_future to produce a future"), then polls it with
// the Queue's own Waker on every subsequent wake, per the design note in
// spec.md §9 ("the Queue-hosted future must be polled with a waker that
// re-schedules the Queue").
type hostedFutureJob[T any] struct {
	makeFuture func() Future[T]
	fut        Future[T]
	completion *CompletionHandle[T]
}

// Run implements Job.
func (j *hostedFutureJob[T]) Run(wake Waker) Poll {
	if j.fut == nil {
		j.fut = j.makeFuture()
	}
	v, poll := j.fut.Poll(wake)
	if poll != Ready {
		return Pending
	}
	if c, ok := any(j.fut).(cancelable); ok && c.Canceled() {
		j.completion.Cancel()
	} else {
		j.completion.Complete(v)
	}
	return Ready
}

// ScheduleFuture enqueues a job that, when the Queue reaches it, invokes
// makeFuture to produce a Future[T]; the Queue hosts the Future, polling it
// with a Waker wired to re-schedule the Queue, until it resolves. The
// returned CompletionHandle delivers the result (or a cancellation, if the
// Queue is wedged before the job ever runs).
func ScheduleFuture[T any](s *Scheduler, q *Queue, makeFuture func() Future[T]) *CompletionHandle[T] {
	completion := NewCompletionHandle[T]()
	job := &hostedFutureJob[T]{makeFuture: makeFuture, completion: completion}
	if err := s.ScheduleAsync(q, job); err != nil {
		completion.Cancel()
	}
	return completion
}

// afterFuture composes "await fut, then invoke fn with its output" into a
// single Future[R], the generic equivalent of the original crate's
// `Scheduler::after` closure-around-a-future.
type afterFuture[T, R any] struct {
	fut      Future[T]
	fn       func(T) R
	canceled bool
}

// Poll implements Future[R].
func (a *afterFuture[T, R]) Poll(wake Waker) (R, Poll) {
	v, poll := a.fut.Poll(wake)
	if poll != Ready {
		var zero R
		return zero, Pending
	}
	if c, ok := any(a.fut).(cancelable); ok && c.Canceled() {
		a.canceled = true
		var zero R
		return zero, Ready
	}
	return a.fn(v), Ready
}

// Canceled implements cancelable, propagating fut's cancellation outward.
func (a *afterFuture[T, R]) Canceled() bool { return a.canceled }

// ScheduleAfter is equivalent to submitting a future-job that first awaits
// fut, then invokes fn with fut's output (spec.md §4.2 "schedule_after").
func ScheduleAfter[T, R any](s *Scheduler, q *Queue, fut Future[T], fn func(T) R) *CompletionHandle[R] {
	return ScheduleFuture[R](s, q, func() Future[R] {
		return &afterFuture[T, R]{fut: fut, fn: fn}
	})
}
