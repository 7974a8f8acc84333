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

// Queue, Desync and Sync are the raw-Queue free-function
// equivalents of Scheduler's methods, all delegating to Default() (spec.md
// §6: "Free-function equivalents queue(), desync(q,f), sync(q,f),
// future(q,f) that delegate to the process-wide Scheduler"). The
// actorq.Handle[T] API in the root package builds the typed, datum-owning
// surface on top of these; these exist for callers that want queue-level
// control without a Handle.

// Queue creates a Queue on the process-wide Scheduler.
func Queue() *Queue { return Default().CreateQueue() }

// Desync runs f asynchronously on q, in submission order with everything
// else already queued there.
func Desync(q *Queue, f func()) error { return Default().ScheduleAsync(q, Once(f)) }

// Sync runs f on q, blocking until it completes, observing the same total
// order as Desync.
func Sync(q *Queue, f func()) error { return Default().ScheduleSync(q, f) }

// The fourth free-function equivalent spec.md §6 names, `future(q,f)`, is
// the generic ScheduleFuture(Default(), q, makeFuture): Go's ban on adding
// type parameters on top of an already-generic name (Future[T] already
// names the interface type in future.go) rules out a same-named wrapper
// here, so callers spell it out explicitly at the one call site that needs
// it rather than through a same-named shim.
