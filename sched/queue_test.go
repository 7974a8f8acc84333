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

	"github.com/lindb/actorq/sched"
)

func TestScheduleAsync_PreservesSubmissionOrder(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		require.NoError(t, s.ScheduleAsync(q, sched.Once(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestScheduleSync_HappensAfterPriorAsyncSubmissions(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()

	var value int
	for i := 0; i < 10; i++ {
		require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { value++ })))
	}

	var observed int
	require.NoError(t, s.ScheduleSync(q, func() { observed = value }))
	assert.Equal(t, 10, observed)
}

func TestScheduleSync_Immediate(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()

	ran := false
	require.NoError(t, s.ScheduleSync(q, func() { ran = true }))
	assert.True(t, ran)
}

func TestQueue_PanicWedgesQueue(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()

	require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { panic("boom") })))

	require.Eventually(t, func() bool {
		return q.State() == "Panicked"
	}, time.Second, time.Millisecond)

	err := s.ScheduleAsync(q, sched.Once(func() {}))
	assert.ErrorIs(t, err, sched.ErrQueuePanicked)

	err = s.ScheduleSync(q, func() {})
	assert.ErrorIs(t, err, sched.ErrQueuePanicked)
}

func TestScheduler_SuspendResume(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()

	var ran bool
	token := s.Suspend(q)
	_, err := token.Done().Wait(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { ran = true })))
	// While suspended, the job must not run.
	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran)

	token.Resume()
	require.Eventually(t, func() bool { return ran }, time.Second, time.Millisecond)
}

func TestScheduler_DoubleResumeIsSafe(t *testing.T) {
	s := sched.NewScheduler()
	q := s.CreateQueue()
	token := s.Suspend(q)
	_, err := token.Done().Wait(context.Background())
	require.NoError(t, err)
	token.Resume()
	token.Resume() // sync.Once makes this a no-op, not a second decrement.
}

func TestScheduler_WorkerCapBoundaries(t *testing.T) {
	t.Run("single threaded mode drains inline", func(t *testing.T) {
		s := sched.NewScheduler(sched.WithMaxThreads(0))
		q := s.CreateQueue()
		done := make(chan struct{})
		require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { close(done) })))
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("job never ran under maxThreads=0")
		}
	})

	t.Run("cap of one still drains every queue", func(t *testing.T) {
		s := sched.NewScheduler(sched.WithMaxThreads(1))
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			q := s.CreateQueue()
			wg.Add(1)
			require.NoError(t, s.ScheduleAsync(q, sched.Once(func() { wg.Done() })))
		}
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("queues never drained under maxThreads=1")
		}
	})
}

func TestScheduler_SpawnThreadBypassesCap(t *testing.T) {
	s := sched.NewScheduler(sched.WithMaxThreads(0))
	require.Equal(t, 0, s.Stats().WorkersAlive)

	s.SpawnThread()
	s.SpawnThread()

	assert.Equal(t, 2, s.Stats().WorkersAlive)
}

func TestScheduler_SetMaxThreadsReschedulesBacklog(t *testing.T) {
	s := sched.NewScheduler(sched.WithMaxThreads(1))

	block := make(chan struct{})
	busy := s.CreateQueue()
	require.NoError(t, s.ScheduleAsync(busy, sched.Once(func() { <-block })))

	waiting := s.CreateQueue()
	done := make(chan struct{})
	require.NoError(t, s.ScheduleAsync(waiting, sched.Once(func() { close(done) })))

	select {
	case <-done:
		t.Fatal("waiting queue ran before the cap was raised")
	case <-time.After(50 * time.Millisecond):
	}

	s.SetMaxThreads(2)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiting queue never ran after raising the cap")
	}
	close(block)
}

// TestScheduler_DespawnIfOverBlocksUntilWorkersExit pins down
// DespawnIfOver's documented contract: it does not return until every
// despawned Worker's goroutine has actually exited, the same way
// workerPool.stopWorkers() blocks on a sync.WaitGroup in
// internal/concurrent/pool.go. WorkersAlive is decremented by a Worker's
// loop on the same goroutine, right before it returns, so observing it at
// the trimmed count with no Eventually/sleep demonstrates the wait
// happened rather than merely signaling quit and racing ahead.
func TestScheduler_DespawnIfOverBlocksUntilWorkersExit(t *testing.T) {
	s := sched.NewScheduler(sched.WithMaxThreads(0))
	s.SpawnThread()
	s.SpawnThread()
	s.SpawnThread()
	require.Equal(t, 3, s.Stats().WorkersAlive)

	s.SetMaxThreads(1)
	s.DespawnIfOver()

	assert.Equal(t, 1, s.Stats().WorkersAlive)
	assert.EqualValues(t, 1, s.Metrics().WorkersAlive.Load())
}
