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
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/lindb/common/pkg/logger"

	"github.com/lindb/actorq"
)

// PipeIn pumps src into h asynchronously: every item (or error) src
// produces is forwarded to process as a Desync job on h, so the pump never
// waits on h's own backlog (spec.md §4.6 "pipe_in"). PipeIn returns
// immediately; the pump runs on its own goroutine until src is exhausted
// (io.EOF), ctx is done, or h's Queue panics.
func PipeIn[Core, T any](ctx context.Context, h *actorq.Handle[Core], src Source[T], process func(core *Core, item T, err error)) {
	id := uuid.New()
	m := monitorFor(h.Scheduler())
	m.spawn(func() {
		for {
			item, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				bridgeStats.StreamsCompleted.Inc()
				return
			}
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				bridgeStats.ErrorsForwarded.Inc()
			} else {
				bridgeStats.ItemsForwarded.Inc()
			}
			if desyncErr := h.Desync(func(core *Core) { process(core, item, err) }); desyncErr != nil {
				bridgeLogger.Warn("pipe_in target queue panicked, stopping pump", logger.String("bridge", id.String()))
				return
			}
		}
	})
}

// Pipe pumps src into h synchronously — process runs with exclusive access
// to h's datum and the pump blocks on h's own backlog before fetching the
// next item from src, giving the bridge natural backpressure (spec.md §4.6
// "pipe"). The returned DownstreamStream carries process's results to a
// consumer and is itself a Source, so Pipe's output can feed a further
// PipeIn or Pipe call.
func Pipe[Core, T, Output any](ctx context.Context, h *actorq.Handle[Core], src Source[T], process func(core *Core, item T, err error) Output) *DownstreamStream[Output] {
	id := uuid.New()
	out := newDownstreamStream[Output]()
	m := monitorFor(h.Scheduler())
	m.spawn(func() {
		defer out.closeUpstream()
		for {
			if out.isStopped() {
				return
			}
			item, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				bridgeStats.StreamsCompleted.Inc()
				return
			}
			if ctx.Err() != nil {
				return
			}
			if out.isStopped() {
				return
			}
			if err != nil {
				bridgeStats.ErrorsForwarded.Inc()
			} else {
				bridgeStats.ItemsForwarded.Inc()
			}
			result, syncErr := actorq.Sync[Core, Output](h, func(core *Core) Output {
				return process(core, item, err)
			})
			if syncErr != nil {
				bridgeLogger.Warn("pipe target queue panicked, stopping pump", logger.String("bridge", id.String()))
				return
			}
			out.push(result)
		}
	})
	return out
}
