package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationConstructorsCarryTimestamps(t *testing.T) {
	before := time.Now()
	notifications := []Notification{
		StateNotification(NewState()),
		TalkChangeNotification(NewState()),
		ErrorNotification("boom"),
		PongNotification(),
		BlinkNotification(),
		RegisteredNotification("abc"),
		ClientConnectedNotification("abc", "viewer"),
		ClientDisconnectedNotification("abc", "viewer"),
	}
	for _, n := range notifications {
		assert.False(t, n.Timestamp.Before(before), "%s has no timestamp", n.Type)
	}
}

func TestDecodeNotification(t *testing.T) {
	n, err := DecodeNotification([]byte(`{"type":"State","timestamp":"2026-03-01T10:00:00Z","state":{"phase":"running","current":2,"total_duration_ms":0}}`))
	require.NoError(t, err)
	assert.Equal(t, NotificationState, n.Type)
	require.NotNil(t, n.State)
	assert.Equal(t, PhaseRunning, n.State.Phase)
	current, ok := n.State.CurrentSlide()
	require.True(t, ok)
	assert.Equal(t, SlideID(2), current)

	_, err = DecodeNotification([]byte(`{"timestamp":"2026-03-01T10:00:00Z"}`))
	assert.ErrorContains(t, err, "missing type")
}

func TestErrorNotificationRoundTrip(t *testing.T) {
	data, err := ErrorNotification("slide index 9 not found").Encode()
	require.NoError(t, err)

	n, err := DecodeNotification(data)
	require.NoError(t, err)
	assert.Equal(t, NotificationError, n.Type)
	assert.Equal(t, "slide index 9 not found", n.Message)
}
