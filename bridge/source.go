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

// Package bridge pumps an external Source into an actorq.Handle's Queue,
// either asynchronously (PipeIn) or synchronously with natural backpressure
// (Pipe), the Go shape of the original crate's pipe.rs (spec.md §4.6).
package bridge

import (
	"context"
	"io"
	"sync"
)

// Source is an external value-producing stream a bridge pumps into a
// Handle's Queue. Next blocks until the next item is available, the stream
// is finished (io.EOF), or ctx is done. A non-EOF error is forwarded to the
// bridge's processor alongside the zero value rather than stopping the
// pump — stopping on error is the processor's call to make, not Source's.
type Source[T any] interface {
	Next(ctx context.Context) (T, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc[T any] func(ctx context.Context) (T, error)

// Next implements Source.
func (f SourceFunc[T]) Next(ctx context.Context) (T, error) { return f(ctx) }

// SliceSource replays a fixed slice of values, then io.EOF. A convenience
// Source for tests and cmd/actorqdemo's demo pipeline, the Go analogue of
// the `futures::stream::iter` fixtures pipe.rs's own tests are built on.
type SliceSource[T any] struct {
	mu     sync.Mutex
	values []T
	pos    int
}

// NewSliceSource returns a Source that yields values in order, then io.EOF.
func NewSliceSource[T any](values []T) *SliceSource[T] {
	return &SliceSource[T]{values: values}
}

// Next implements Source.
func (s *SliceSource[T]) Next(ctx context.Context) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.values) {
		var zero T
		return zero, io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}
