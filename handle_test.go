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

package actorq_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindb/actorq"
	"github.com/lindb/actorq/sched"
)

type counter struct {
	value int
}

type readyFuture[T any] struct{ v T }

func (r readyFuture[T]) Poll(sched.Waker) (T, sched.Poll) { return r.v, sched.Ready }

func TestHandle_DesyncThenSyncObservesAllWrites(t *testing.T) {
	h := actorq.New(counter{})
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		require.NoError(t, h.Desync(func(c *counter) {
			defer wg.Done()
			c.value++
		}))
	}
	wg.Wait()

	total, err := actorq.Sync(h, func(c *counter) int { return c.value })
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestHandle_SyncVoid(t *testing.T) {
	h := actorq.New(counter{value: 1})
	defer h.Close()

	require.NoError(t, h.SyncVoid(func(c *counter) { c.value = 99 }))
	v, err := actorq.Sync(h, func(c *counter) int { return c.value })
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestHandle_Future(t *testing.T) {
	h := actorq.New(counter{value: 7})
	defer h.Close()

	completion := actorq.Future(h, func(c *counter) sched.Future[int] {
		return readyFuture[int]{v: c.value}
	})
	v, err := completion.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestHandle_After(t *testing.T) {
	h := actorq.New(counter{value: 5})
	defer h.Close()

	completion := actorq.After(h, readyFuture[int]{v: 3}, func(c *counter, delta int) int {
		c.value += delta
		return c.value
	})
	v, err := completion.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestHandle_CloseIsIdempotentAndToleratesPanic(t *testing.T) {
	h := actorq.New(counter{})
	require.NoError(t, h.Desync(func(c *counter) { panic("boom") }))
	require.Eventually(t, func() bool { return h.Queue().State() == "Panicked" }, time.Second, time.Millisecond)
	assert.NotPanics(t, func() { h.Close() })
	assert.NotPanics(t, func() { h.Close() })
}
