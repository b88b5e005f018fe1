package query

import (
	"context"
	"sync/atomic"
)

// Mutation wraps an async side-effecting call against the backend.
// The pending flag is true strictly between invocation and settlement
// and false otherwise, including after an error. Concurrent runs are
// independent; there is no request deduplication.
type Mutation[T any] struct {
	fn        func(ctx context.Context, input T) error
	inflight  atomic.Int32
	onSuccess func(ctx context.Context, input T)
	onError   func(ctx context.Context, input T, err error)
}

func NewMutation[T any](fn func(ctx context.Context, input T) error) *Mutation[T] {
	return &Mutation[T]{fn: fn}
}

// OnSuccess registers a callback invoked exactly once per successful run.
func (m *Mutation[T]) OnSuccess(fn func(ctx context.Context, input T)) *Mutation[T] {
	m.onSuccess = fn
	return m
}

// OnError registers a callback invoked exactly once per failed run.
func (m *Mutation[T]) OnError(fn func(ctx context.Context, input T, err error)) *Mutation[T] {
	m.onError = fn
	return m
}

// Run executes the mutation and settles exactly one callback.
func (m *Mutation[T]) Run(ctx context.Context, input T) error {
	m.inflight.Add(1)

	err := m.fn(ctx, input)

	m.inflight.Add(-1)

	if err != nil {
		if m.onError != nil {
			m.onError(ctx, input, err)
		}
		return err
	}
	if m.onSuccess != nil {
		m.onSuccess(ctx, input)
	}
	return nil
}

// Pending reports whether at least one run is in flight.
func (m *Mutation[T]) Pending() bool {
	return m.inflight.Load() > 0
}
