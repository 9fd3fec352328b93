package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/errs"
	"github.com/slidecast/presentation-service/pkg/model"
)

func TestRegisterHandsOutSeededReceiver(t *testing.T) {
	svc := NewClientService(4, zap.NewNop())

	initial := model.StateNotification(model.NewState())
	id, rx, err := svc.Register("viewer", nil, initial)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The seed is the first thing the receiver observes.
	n, _, err := rx.Next(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationState, n.Type)

	assert.Equal(t, 1, svc.ActiveClients())
	infos := svc.Clients()
	require.Len(t, infos, 1)
	assert.Equal(t, "viewer", infos[0].Name)
}

func TestRegistryCap(t *testing.T) {
	svc := NewClientService(2, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	first, _, err := svc.Register("a", nil, initial)
	require.NoError(t, err)
	_, _, err = svc.Register("b", nil, initial)
	require.NoError(t, err)

	_, _, err = svc.Register("c", nil, initial)
	assert.ErrorIs(t, err, errs.ErrTooManyClients)

	// Freeing a slot lets the next registration in.
	svc.Unregister(first)
	_, _, err = svc.Register("c", nil, initial)
	assert.NoError(t, err)
}

func TestRegisterSweepsDeadReceiversBeforeCapCheck(t *testing.T) {
	svc := NewClientService(1, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	_, rx, err := svc.Register("dead", nil, initial)
	require.NoError(t, err)

	// The connection died without unregistering; its receiver is closed.
	rx.Close()

	_, _, err = svc.Register("alive", nil, initial)
	assert.NoError(t, err)
	assert.Equal(t, 1, svc.ActiveClients())
}

func TestNotifyAllAndOthers(t *testing.T) {
	svc := NewClientService(4, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	idA, rxA, err := svc.Register("a", nil, initial)
	require.NoError(t, err)
	_, rxB, err := svc.Register("b", nil, initial)
	require.NoError(t, err)

	// Registering b overwrote a's seed with the ClientConnected
	// announcement; b's own slot still holds its seed, since
	// NotifyOthers excluded it.
	ctx := context.Background()
	nA, seqA, err := rxA.Next(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationClientConnected, nA.Type)

	blink := model.BlinkNotification()
	svc.NotifyOthers(idA, blink)
	nB, _, err := rxB.Next(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationBlink, nB.Type)

	svc.NotifyAll(model.PongNotification())
	nA, _, err = rxA.Next(ctx, seqA)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationPong, nA.Type)
}

func TestNotifyClient(t *testing.T) {
	svc := NewClientService(4, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	id, rx, err := svc.Register("a", nil, initial)
	require.NoError(t, err)

	require.NoError(t, svc.NotifyClient(id, model.ErrorNotification("just you")))
	n, _, err := rx.Next(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationError, n.Type)

	assert.ErrorIs(t, svc.NotifyClient("nope", model.PongNotification()), errs.ErrClientNotFound)
}

func TestUnregisterClosesReceiverAndAnnounces(t *testing.T) {
	svc := NewClientService(4, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	idA, rxA, err := svc.Register("a", nil, initial)
	require.NoError(t, err)
	idB, rxB, err := svc.Register("b", nil, initial)
	require.NoError(t, err)

	svc.Unregister(idB)
	svc.Unregister(idB) // unknown id: ignored

	assert.True(t, rxB.Closed())
	assert.Equal(t, 1, svc.ActiveClients())

	// a hears about the departure.
	n, _, err := rxA.Next(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationClientDisconnected, n.Type)
	assert.Equal(t, idB, n.Client)

	svc.Unregister(idA)
	assert.Equal(t, 0, svc.ActiveClients())
}

func TestCleanupTaskSweepsClosedReceivers(t *testing.T) {
	svc := NewClientService(4, zap.NewNop())
	initial := model.StateNotification(model.NewState())

	_, rx, err := svc.Register("dead", nil, initial)
	require.NoError(t, err)
	rx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.CleanupTask(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return svc.ActiveClients() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
