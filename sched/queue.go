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

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"
)

// syncAction is the atomically-chosen dispatch strategy for §4.3 synchronous
// submission.
type syncAction int

const (
	syncImmediate syncAction = iota
	syncDrainOnThisThread
	syncWaitForBackground
	syncPanic
)

type state int32

const (
	stateIdle state = iota
	statePending
	stateRunning
	stateAwokenWhileRunning
	stateWaitingForWake
	stateSuspending
	stateSuspended
	statePanicked
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "Idle"
	case statePending:
		return "Pending"
	case stateRunning:
		return "Running"
	case stateAwokenWhileRunning:
		return "AwokenWhileRunning"
	case stateWaitingForWake:
		return "WaitingForWake"
	case stateSuspending:
		return "Suspending"
	case stateSuspended:
		return "Suspended"
	case statePanicked:
		return "Panicked"
	default:
		return "Unknown"
	}
}

var queueLogger = logger.GetLogger("Sched", "Queue")

// Queue is the per-datum FIFO and state machine (§3/§4.1). A Queue owns no
// data itself; callers (typically an actorq.Handle) attach their own state
// to jobs submitted against it. At most one goroutine ever runs a Queue's
// jobs at a time.
type Queue struct {
	ID uuid.UUID

	sched *Scheduler

	mu   sync.Mutex
	cond *sync.Cond

	jobs    []Job
	current Job
	state   state

	// drivenByCaller is set while a DrainOnThisThread caller owns the drain
	// loop in-line, so markAwoken does not also push the Queue onto the
	// run-list and race a second goroutine into the same Queue.
	drivenByCaller bool

	suspensionCount atomic.Int32
}

func newQueue(s *Scheduler) *Queue {
	q := &Queue{
		ID:    uuid.New(),
		sched: s,
		state: stateIdle,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// State returns the Queue's current state for diagnostics only; callers
// must never branch scheduling logic on it from outside this package.
func (q *Queue) State() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.String()
}

// Pending reports the number of jobs waiting in the FIFO, not counting one
// currently in flight.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// submit appends job to the FIFO. It reports whether the caller must push
// the Queue onto the Scheduler's run-list (true exactly on the Idle->Pending
// edge) and whether the Queue refused the job outright (Panicked).
func (q *Queue) submit(job Job) (needsSchedule bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == statePanicked {
		return false, ErrQueuePanicked
	}
	q.jobs = append(q.jobs, job)
	if q.state == stateIdle {
		q.state = statePending
		return true, nil
	}
	return false, nil
}

// markAwoken is the Waker target handed to a Job that returned Pending. It
// drives the WaitingForWake/Running/AwokenWhileRunning corner of the state
// machine described in spec.md §3.
func (q *Queue) markAwoken() {
	q.mu.Lock()
	reschedule := false
	switch q.state {
	case stateRunning:
		q.state = stateAwokenWhileRunning
	case stateWaitingForWake:
		q.state = statePending
		if !q.drivenByCaller {
			reschedule = true
		}
	default:
		// Already Ready-and-moved-on, Suspended, or Panicked: a late or
		// duplicate wake is a no-op.
	}
	q.cond.Broadcast()
	q.mu.Unlock()
	if reschedule {
		q.sched.scheduleQueue(q)
	}
}

// markPanicked moves the Queue to its terminal state. Called by the worker
// loop's recover() handler.
func (q *Queue) markPanicked() {
	q.mu.Lock()
	q.state = statePanicked
	q.jobs = nil
	q.current = nil
	q.cond.Broadcast()
	q.mu.Unlock()
	queueLogger.Warn("queue panicked, no further jobs will run", logger.String("queue", q.ID.String()))
}

// finishDraining is called by both the worker path and the synchronous
// drain paths once they have run a job and observe (under lock) that there
// is nothing left queued to run immediately. It resolves Running into
// either Idle, Pending (more work arrived while running, so re-schedule),
// or Suspended (a suspend request landed while draining).
func (q *Queue) finishDraining() (pushRunList bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == statePanicked {
		return false
	}
	if q.state == stateSuspending {
		q.state = stateSuspended
		return false
	}
	if len(q.jobs) > 0 || q.current != nil {
		q.state = statePending
		return true
	}
	q.state = stateIdle
	return false
}

// nextJob returns the job the drain loop should run next: the in-flight job
// left over from a prior Pending result, or the next one off the FIFO.
func (q *Queue) nextJob() (job Job, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current != nil {
		return q.current, true
	}
	if len(q.jobs) == 0 {
		return nil, false
	}
	job = q.jobs[0]
	q.jobs = q.jobs[1:]
	q.current = job
	return job, true
}

// settleAfterRun records the outcome of running nextJob's result and
// reports whether the caller should keep looping in place. false means the
// Queue is now parked (WaitingForWake), finalized (Suspended), or terminal
// (Panicked) and the caller must stop driving it.
func (q *Queue) settleAfterRun(poll Poll) (keepGoing bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state == statePanicked {
		return false
	}
	if poll == Ready {
		q.current = nil
		switch q.state {
		case stateAwokenWhileRunning:
			q.state = stateRunning
			return true
		case stateSuspending:
			// The job that just completed is the one that requested the
			// suspend (suspension_count went 0->1 inside its body); finalize
			// immediately rather than draining whatever else is queued.
			q.state = stateSuspended
			q.cond.Broadcast()
			return false
		default:
			return true
		}
	}
	switch q.state {
	case stateAwokenWhileRunning:
		q.state = stateRunning
		return true
	case stateRunning:
		q.state = stateWaitingForWake
		return false
	default:
		return false
	}
}

// waker returns the Waker a Job should be handed when it returns Pending.
func (q *Queue) waker() Waker {
	return func() { q.markAwoken() }
}

// beginRun claims a Queue popped off the run-list by atomically checking it
// is still Pending and moving it to Running. It reports false if the Queue
// was already claimed by something else first — a DrainOnThisThread sync
// caller racing the same run-list entry, per invariant 2 ("a Queue appears
// on the run-list only when Pending"): once claimed, a stale run-list entry
// for it is simply dropped by whoever finds it second.
func (q *Queue) beginRun() (ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.state != statePending {
		return false
	}
	q.state = stateRunning
	return true
}

// enterSync implements §4.3's atomic run-action selection. It also performs
// the Idle->Running / Pending->Running edge inline, under the same lock
// acquisition, the same way beginRun does for the Worker path.
func (q *Queue) enterSync() syncAction {
	q.mu.Lock()
	defer q.mu.Unlock()
	switch q.state {
	case statePanicked:
		return syncPanic
	case stateIdle:
		q.state = stateRunning
		return syncImmediate
	case statePending:
		q.state = stateRunning
		return syncDrainOnThisThread
	default:
		return syncWaitForBackground
	}
}

// setDrivenByCaller marks whether a DrainOnThisThread caller, rather than a
// pool Worker, currently owns driving this Queue. While true, markAwoken
// does not push the Queue back onto the run-list on the
// WaitingForWake->Pending edge: the caller's own park loop picks it back up.
func (q *Queue) setDrivenByCaller(v bool) {
	q.mu.Lock()
	q.drivenByCaller = v
	q.mu.Unlock()
}

// waitingForWake reports whether the Queue is currently parked awaiting a
// waker, vs. finalized some other way (Suspended/Panicked).
func (q *Queue) waitingForWake() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state == stateWaitingForWake
}

// park blocks the calling goroutine until the Queue leaves WaitingForWake
// (i.e. a waker fired, or the queue otherwise moved on). Used by
// DrainOnThisThread to cooperate with background wakers the same way a
// worker goroutine would, without busy-polling.
func (q *Queue) park() {
	q.mu.Lock()
	for q.state == stateWaitingForWake {
		q.cond.Wait()
	}
	// markAwoken moved WaitingForWake->Pending without rescheduling (this
	// caller is still driving); reclaim Running so the drain loop continues.
	if q.state == statePending {
		q.state = stateRunning
	}
	q.mu.Unlock()
}

// beginSuspend is the body of the async job Scheduler.Suspend submits. It
// increments suspensionCount and, on the 0->1 edge, requests a Suspending
// transition. It reports whether the suspend is still in effect (count>0)
// once this job's increment has been applied, which is what the caller uses
// to decide whether to resolve or cancel the suspend's completion handle.
func (q *Queue) beginSuspend() (stillSuspended bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := q.suspensionCount.Add(1)
	if count == 1 {
		q.state = stateSuspending
	}
	return count > 0
}

// endResume is resume()'s state-machine half (§4.2 "resume"). It decrements
// suspensionCount and, on reaching zero, resolves Suspended->Idle or
// Suspending->Running. It reports whether the caller must reschedule the
// Queue (the Idle->Pending edge, if there is pending work).
func (q *Queue) endResume() (reschedule bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	count := q.suspensionCount.Sub(1)
	if count < 0 {
		q.suspensionCount.Add(1)
		return false, ErrUnbalancedResume
	}
	if count > 0 {
		return false, nil
	}
	switch q.state {
	case stateSuspended:
		if len(q.jobs) > 0 {
			q.state = statePending
			return true, nil
		}
		q.state = stateIdle
		return false, nil
	case stateSuspending:
		q.state = stateRunning
		return false, nil
	default:
		return false, nil
	}
}

// isPanicked reports whether a Job run just wedged the Queue permanently.
func (q *Queue) isPanicked() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state == statePanicked
}
