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

// Package sched implements the core scheduling engine: a Job abstraction
// polled to completion, a per-datum Queue that serializes Jobs through an
// explicit state machine, and a Scheduler that drains Queues across a capped
// pool of worker goroutines.
package sched

// Poll is the result of a single call to Job.Run.
type Poll int

const (
	// Ready means the Job has finished; the Queue moves on to its next Job.
	Ready Poll = iota
	// Pending means the Job is waiting on something else and must be
	// re-driven once its Waker fires. The Queue parks until then.
	Pending
)

func (p Poll) String() string {
	if p == Ready {
		return "Ready"
	}
	return "Pending"
}

// Waker re-arms a Job that previously returned Pending. Calling it is safe
// from any goroutine, at any time, including after the owning Queue has
// moved on; a Waker fired more than once, or after its Job already finished,
// is a silent no-op.
type Waker func()

// Job is the erased unit of work a Queue carries. Run is called at most once
// at a time for a given Job (Invariant: at most one thread executes jobs
// from a Queue concurrently). Returning Pending hands the supplied Waker to
// the Job; the Job must arrange for the Waker to be called exactly when it
// is ready to make progress again.
type Job interface {
	Run(wake Waker) Poll
}

// JobFunc adapts a plain poll function to the Job interface.
type JobFunc func(wake Waker) Poll

// Run implements Job.
func (f JobFunc) Run(wake Waker) Poll { return f(wake) }

// once wraps a func() that runs to completion the first time it is polled;
// it never returns Pending. This is the shape every Desync/Sync job takes.
func once(f func()) Job {
	return JobFunc(func(Waker) Poll {
		f()
		return Ready
	})
}

// Once is once's exported form, for callers outside this package (the
// actorq and bridge packages) that need to build a plain run-to-completion
// Job without reaching into sched's internals.
func Once(f func()) Job { return once(f) }
