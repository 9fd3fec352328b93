package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/slidecast/presentation-service/internal/errs"
)

func TestLatestInitialValueIsUnread(t *testing.T) {
	l := NewLatest("initial")

	v, seq, err := l.Next(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "initial", v)
	assert.Equal(t, uint64(1), seq)
}

func TestLatestSlowReaderSeesOnlyNewestValue(t *testing.T) {
	l := NewLatest(0)

	_, seq, err := l.Next(context.Background(), 0)
	require.NoError(t, err)

	// Three writes land before the reader comes back; only the last
	// survives, intermediate values are dropped.
	l.Set(1)
	l.Set(2)
	l.Set(3)

	v, seq, err := l.Next(context.Background(), seq)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	// Nothing newer: the reader blocks until the next Set.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err = l.Next(ctx, seq)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLatestWakesBlockedReaderOnSet(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLatest("first")
	_, seq, err := l.Next(context.Background(), 0)
	require.NoError(t, err)

	got := make(chan string, 1)
	go func() {
		v, _, err := l.Next(context.Background(), seq)
		if err == nil {
			got <- v
		}
	}()

	time.Sleep(10 * time.Millisecond)
	l.Set("second")

	select {
	case v := <-got:
		assert.Equal(t, "second", v)
	case <-time.After(time.Second):
		t.Fatal("reader was not woken by Set")
	}
}

func TestLatestClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLatest(0)
	require.False(t, l.Closed())

	unblocked := make(chan error, 1)
	go func() {
		_, _, err := l.Next(context.Background(), 1)
		unblocked <- err
	}()

	time.Sleep(10 * time.Millisecond)
	l.Close()
	l.Close() // idempotent

	assert.True(t, l.Closed())
	assert.ErrorIs(t, <-unblocked, errs.ErrReceiverClosed)

	// Set after close is a no-op and must not panic.
	l.Set(42)
	_, _, err := l.Next(context.Background(), 0)
	assert.ErrorIs(t, err, errs.ErrReceiverClosed)
}
