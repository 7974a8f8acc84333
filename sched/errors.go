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

import "errors"

var (
	// ErrQueuePanicked is returned by any submission call against a Queue
	// whose last Job panicked. The Queue is wedged permanently; callers must
	// create a new Queue.
	ErrQueuePanicked = errors.New("sched: queue is panicked, no further jobs accepted")

	// ErrUnbalancedResume is returned by Queue.endResume when a resume finds
	// a Queue that was never suspended, or already fully resumed. The
	// Scheduler's resume path logs it; ResumeToken.Resume returns no error.
	ErrUnbalancedResume = errors.New("sched: resume called without a matching suspend")
)
