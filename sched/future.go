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
	"context"
	"errors"
	"sync"
)

// ErrCanceled is returned by CompletionHandle.Wait when the producing side
// (the Queue/job that would have delivered a value) was dropped before
// delivering a result, e.g. ScheduleFuture or Suspend against a Queue that
// is already Panicked, so the job is never queued (§7 "Canceled completion").
var ErrCanceled = errors.New("sched: completion canceled")

// Future is a pollable value of type T, the generic hand-off point between
// a Job hosted on one Queue and whatever eventually produces T. A Future is
// itself driven like a Job: Poll is called with a Waker to call once T is
// ready.
//
//go:generate mockgen -source=./future.go -destination=./future_mock.go -package=sched
type Future[T any] interface {
	Poll(wake Waker) (T, Poll)
}

// CompletionHandle is a single-value, single-producer Future: the result of
// Scheduler.Future/Scheduler.After/Scheduler.Suspend. It is itself a
// Future[T], so it composes directly as the input of Scheduler.After.
type CompletionHandle[T any] struct {
	mu       sync.Mutex
	done     bool
	canceled bool
	value    T
	wake     Waker
	notify   chan struct{}
}

// NewCompletionHandle creates an unresolved handle. It is exported so that
// bridge and other callers outside this package can produce their own
// completions without routing through a Queue.
func NewCompletionHandle[T any]() *CompletionHandle[T] {
	return &CompletionHandle[T]{notify: make(chan struct{})}
}

// Complete resolves the handle exactly once; later calls are no-ops. It
// fires the currently registered Waker, if any.
func (c *CompletionHandle[T]) Complete(value T) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.value = value
	c.done = true
	wake := c.wake
	close(c.notify)
	c.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Cancel resolves the handle as canceled exactly once: the producing side
// was dropped before it could deliver a value (§7 "Canceled completion").
// Later calls, including a later Complete, are no-ops.
func (c *CompletionHandle[T]) Cancel() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.canceled = true
	c.done = true
	wake := c.wake
	close(c.notify)
	c.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Canceled reports whether the handle resolved via Cancel rather than
// Complete. Only meaningful once the handle has resolved.
func (c *CompletionHandle[T]) Canceled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canceled
}

// Poll implements Future[T]. A canceled handle polls Ready with the zero
// value; callers that care about the distinction should check Canceled
// once resolved (Wait surfaces it as ErrCanceled).
func (c *CompletionHandle[T]) Poll(wake Waker) (T, Poll) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return c.value, Ready
	}
	c.wake = wake
	var zero T
	return zero, Pending
}

// Wait blocks until the handle resolves or ctx is done. It is the
// synchronous escape hatch for callers outside the scheduler (e.g. cmd/
// actorqdemo) that do not want to compose via After.
func (c *CompletionHandle[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.notify:
		c.mu.Lock()
		v, canceled := c.value, c.canceled
		c.mu.Unlock()
		if canceled {
			var zero T
			return zero, ErrCanceled
		}
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ResumeToken is returned by Scheduler.Suspend. Done resolves once the
// suspend has actually taken effect (the suspend job has run and the Queue
// is Suspending, finalized to Suspended as that job returns); Resume
// reverses it and is safe to call more than once or concurrently.
type ResumeToken struct {
	q      *Queue
	s      *Scheduler
	done   *CompletionHandle[struct{}]
	once   sync.Once
	resume chan struct{}
}

// Done returns a handle that resolves once the suspend has taken effect.
func (t *ResumeToken) Done() *CompletionHandle[struct{}] { return t.done }

// Resume reverses the suspend this token represents. Calling it more than
// once is a no-op; calling it at all before Done resolves is fine, it simply
// cancels the suspend as soon as it would have taken effect.
func (t *ResumeToken) Resume() {
	t.once.Do(func() {
		resumeOnceDone := func() {
			<-t.done.notify
			if !t.done.Canceled() {
				t.s.resume(t.q)
			}
		}
		select {
		case <-t.done.notify:
			resumeOnceDone()
		default:
			go resumeOnceDone()
		}
	})
}
