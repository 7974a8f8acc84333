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

package sched_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lindb/actorq/sched"
)

// manualFuture resolves once resolve() is called, exercising the Pending ->
// waker -> Ready path rather than resolving on first poll.
type manualFuture[T any] struct {
	mu    sync.Mutex
	ready bool
	value T
	wake  sched.Waker
}

func (f *manualFuture[T]) Poll(wake sched.Waker) (T, sched.Poll) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ready {
		return f.value, sched.Ready
	}
	f.wake = wake
	var zero T
	return zero, sched.Pending
}

func (f *manualFuture[T]) resolve(v T) {
	f.mu.Lock()
	f.value = v
	f.ready = true
	wake := f.wake
	f.mu.Unlock()
	if wake != nil {
		wake()
	}
}

func TestScheduleFuture_ResolvesAfterPending(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()
	fut := &manualFuture[int]{}

	completion := sched.ScheduleFuture(s, q, func() sched.Future[int] { return fut })
	go fut.resolve(42)

	v, err := completion.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestScheduleAfter_ComposesOverAnotherFuture(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()
	fut := &manualFuture[int]{}

	completion := sched.ScheduleAfter(s, q, fut, func(v int) int { return v * 2 })
	go fut.resolve(21)

	v, err := completion.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCompletionHandle_CancelSurfacesErrCanceled(t *testing.T) {
	c := sched.NewCompletionHandle[int]()
	c.Cancel()
	_, err := c.Wait(context.Background())
	assert.ErrorIs(t, err, sched.ErrCanceled)
	assert.True(t, c.Canceled())
}

func TestScheduleFuture_CancelsIfQueueAlreadyPanicked(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()
	require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { panic("boom") })))
	require.Eventually(t, func() bool { return q.State() == "Panicked" }, time.Second, time.Millisecond)

	completion := sched.ScheduleFuture(s, q, func() sched.Future[int] { return &manualFuture[int]{} })
	_, err := completion.Wait(context.Background())
	assert.ErrorIs(t, err, sched.ErrCanceled)
}
