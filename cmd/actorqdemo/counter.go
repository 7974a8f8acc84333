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

package main

import "github.com/lindb/actorq/sched"

// Counter is the toy datum the demo commands serialize access to through
// an actorq.Handle[Counter] — standing in for the kind of small owned state
// (a connection, a cache shard, a session) this library is meant to guard.
type Counter struct {
	Value int
	Log   []string
}

func (c *Counter) record(event string) {
	c.Log = append(c.Log, event)
}

// readyFuture resolves immediately to v, used to demonstrate Handle.Future
// without pulling in a real I/O dependency for the demo.
type readyFuture[T any] struct{ v T }

// Poll implements sched.Future[T].
func (r readyFuture[T]) Poll(sched.Waker) (T, sched.Poll) { return r.v, sched.Ready }
