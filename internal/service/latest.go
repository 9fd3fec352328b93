package service

import (
	"context"
	"sync"

	"github.com/slidecast/presentation-service/internal/errs"
)

// Latest is a single-slot "last value wins" channel: Set replaces any
// unread value and wakes all waiters. A slow reader observes only the
// most recent value, never a backlog of intermediate ones.
type Latest[T any] struct {
	mu      sync.Mutex
	val     T
	seq     uint64
	closed  bool
	changed chan struct{}
}

// NewLatest creates a Latest seeded with an initial value. The initial
// value counts as unread, so the first Next returns it immediately.
func NewLatest[T any](initial T) *Latest[T] {
	return &Latest[T]{
		val:     initial,
		seq:     1,
		changed: make(chan struct{}),
	}
}

// Set replaces the slot value, dropping any superseded unread value.
// Setting a closed Latest is a no-op.
func (l *Latest[T]) Set(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.val = v
	l.seq++
	close(l.changed)
	l.changed = make(chan struct{})
}

// Next blocks until a value newer than lastSeq is available and returns it
// together with its sequence number. Pass 0 to receive the current value
// right away. Returns errs.ErrReceiverClosed once the slot is closed.
func (l *Latest[T]) Next(ctx context.Context, lastSeq uint64) (T, uint64, error) {
	for {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			var zero T
			return zero, lastSeq, errs.ErrReceiverClosed
		}
		if l.seq > lastSeq {
			v, seq := l.val, l.seq
			l.mu.Unlock()
			return v, seq, nil
		}
		ch := l.changed
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			var zero T
			return zero, lastSeq, ctx.Err()
		}
	}
}

// Close marks the slot closed and wakes all waiters. Idempotent.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.changed)
}

// Closed reports whether the receiver side has been shut down. The client
// registry sweep uses this to evict entries whose connection died without
// a clean unregister.
func (l *Latest[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
