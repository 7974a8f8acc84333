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

package bridge

import (
	"context"
	"io"
	"sync"
)

// DownstreamStream is Pipe's output: a lock-guarded FIFO of processed
// results with blocking consumption, grounded on pipe.rs's PipeStreamCore.
// It implements Source itself, so Pipe's output can feed a further PipeIn
// or Pipe call.
type DownstreamStream[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []T
	closed  bool // the upstream pump is done producing (stream exhausted or wedged)
	stopped bool // the consumer asked the pump to stop (Close)
}

func newDownstreamStream[T any]() *DownstreamStream[T] {
	d := &DownstreamStream[T]{}
	d.cond = sync.NewCond(&d.mu)
	return d
}

func (d *DownstreamStream[T]) push(v T) {
	d.mu.Lock()
	d.pending = append(d.pending, v)
	d.cond.Broadcast()
	d.mu.Unlock()
}

func (d *DownstreamStream[T]) closeUpstream() {
	d.mu.Lock()
	d.closed = true
	d.cond.Broadcast()
	d.mu.Unlock()
}

// Close tells the upstream pump to stop fetching from its Source at the
// next opportunity. It is checked before the pump blocks on its next
// upstream item, not only after it returns one — the fix SPEC_FULL.md's
// supplement #4 makes over the original's looser behavior, where a consumer
// that stopped reading could leave the pump parked on a Source that never
// produces again.
func (d *DownstreamStream[T]) Close() {
	d.mu.Lock()
	d.stopped = true
	d.cond.Broadcast()
	d.mu.Unlock()
}

func (d *DownstreamStream[T]) isStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Next implements Source[T]: it blocks until an item is available, the
// upstream pump finished (io.EOF), Close was called (io.EOF), or ctx is
// done. The per-call watcher goroutine is the price of layering ctx
// cancellation over sync.Cond, which has no channel to select on; it exits
// the instant Next returns.
func (d *DownstreamStream[T]) Next(ctx context.Context) (T, error) {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			d.cond.Broadcast()
			d.mu.Unlock()
		case <-stop:
		}
	}()

	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.pending) == 0 && !d.closed && !d.stopped && ctx.Err() == nil {
		d.cond.Wait()
	}
	if len(d.pending) > 0 {
		v := d.pending[0]
		d.pending = d.pending[1:]
		return v, nil
	}
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	return zero, io.EOF
}
