package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType is the discriminator for server-to-client notifications.
type NotificationType string

const (
	NotificationState              NotificationType = "State"
	NotificationTalkChange         NotificationType = "TalkChange"
	NotificationError              NotificationType = "Error"
	NotificationPong               NotificationType = "Pong"
	NotificationBlink              NotificationType = "Blink"
	NotificationRegistered         NotificationType = "Registered"
	NotificationClientConnected    NotificationType = "ClientConnected"
	NotificationClientDisconnected NotificationType = "ClientDisconnected"
)

// Notification is the server-to-client fact vocabulary, tagged by the
// "type" field. Every notification carries a timestamp so a client can
// discard frames that arrive out of order across a reconnect race.
type Notification struct {
	Type      NotificationType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	State     *State           `json:"state,omitempty"`
	Message   string           `json:"message,omitempty"`
	Client    string           `json:"client,omitempty"`
	Name      string           `json:"name,omitempty"`
}

// StateNotification wraps the current state with a fresh timestamp.
func StateNotification(state State) Notification {
	return Notification{Type: NotificationState, Timestamp: time.Now(), State: &state}
}

// TalkChangeNotification signals a deck reload with the remapped state.
func TalkChangeNotification(state State) Notification {
	return Notification{Type: NotificationTalkChange, Timestamp: time.Now(), State: &state}
}

// ErrorNotification reports a non-fatal protocol or domain error.
func ErrorNotification(message string) Notification {
	return Notification{Type: NotificationError, Timestamp: time.Now(), Message: message}
}

// PongNotification answers a Ping and doubles as the server heartbeat.
func PongNotification() Notification {
	return Notification{Type: NotificationPong, Timestamp: time.Now()}
}

// BlinkNotification is the ephemeral attention signal.
func BlinkNotification() Notification {
	return Notification{Type: NotificationBlink, Timestamp: time.Now()}
}

// RegisteredNotification acknowledges a Register command with the
// server-minted client id.
func RegisteredNotification(clientID string) Notification {
	return Notification{Type: NotificationRegistered, Timestamp: time.Now(), Client: clientID}
}

// ClientConnectedNotification announces a new peer for presence UIs.
func ClientConnectedNotification(clientID, name string) Notification {
	return Notification{Type: NotificationClientConnected, Timestamp: time.Now(), Client: clientID, Name: name}
}

// ClientDisconnectedNotification announces a departed peer.
func ClientDisconnectedNotification(clientID, name string) Notification {
	return Notification{Type: NotificationClientDisconnected, Timestamp: time.Now(), Client: clientID, Name: name}
}

// DecodeNotification parses a wire frame into a Notification.
func DecodeNotification(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if n.Type == "" {
		return Notification{}, fmt.Errorf("decode notification: missing type")
	}
	return n, nil
}

// Encode serializes the notification to its wire frame.
func (n Notification) Encode() ([]byte, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return data, nil
}
