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

package bridge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lindb/actorq"
	"github.com/lindb/actorq/bridge"
)

type sink struct {
	values []int
}

func TestPipeIn_ForwardsEveryItemAsync(t *testing.T) {
	h := actorq.New(sink{})
	defer h.Close()

	src := bridge.NewSliceSource([]int{1, 2, 3, 4})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bridge.PipeIn(ctx, h, src, func(c *sink, item int, err error) {
		require.NoError(t, err)
		c.values = append(c.values, item)
	})

	require.Eventually(t, func() bool {
		values, syncErr := actorq.Sync(h, func(c *sink) int { return len(c.values) })
		return syncErr == nil && values == 4
	}, time.Second, 10*time.Millisecond)

	values, err := actorq.Sync(h, func(c *sink) []int { return append([]int(nil), c.values...) })
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, values)
}

func TestPipe_ProducesADownstreamSourceWithBackpressure(t *testing.T) {
	h := actorq.New(sink{})
	defer h.Close()

	src := bridge.NewSliceSource([]int{1, 2, 3})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := bridge.Pipe(ctx, h, src, func(c *sink, item int, err error) int {
		c.values = append(c.values, item)
		return item * 10
	})

	var collected []int
	for {
		v, nextErr := out.Next(ctx)
		if nextErr != nil {
			break
		}
		collected = append(collected, v)
	}
	assert.Equal(t, []int{10, 20, 30}, collected)
}

func TestDownstreamStream_CloseStopsThePumpBeforeBlockingAgain(t *testing.T) {
	h := actorq.New(sink{})
	defer h.Close()

	src := bridge.NewSliceSource([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out := bridge.Pipe(ctx, h, src, func(c *sink, item int, err error) int { return item })

	first, err := out.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	out.Close()

	// Draining whatever already arrived must terminate in io.EOF rather
	// than hang once Close has been observed.
	require.Eventually(t, func() bool {
		_, nextErr := out.Next(ctx)
		return nextErr != nil
	}, time.Second, 10*time.Millisecond)
}
