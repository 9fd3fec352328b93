package client

import (
	"time"

	"github.com/slidecast/presentation-service/pkg/model"
)

// Defaults applied by Config.withDefaults for zero-valued fields.
const (
	DefaultMaxRetries       = 10
	DefaultRetryDelay       = 500 * time.Millisecond
	DefaultMaxRetryDelay    = 30 * time.Second
	DefaultBackoffFactor    = 2.0
	DefaultJitter           = 0.2
	DefaultPingPeriod       = 25 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultSendBuffer       = 16
)

// Config describes one client connection. Zero values fall back to the
// package defaults; only URL is mandatory.
type Config struct {
	// URL is the WebSocket endpoint, e.g. "ws://localhost:8080/api/ws".
	URL string

	// Name is the human-readable label announced in the Register command
	// and shown to other clients in presence notifications.
	Name string

	// Renderer announces how this client presents slides.
	Renderer model.Renderer

	// MaxRetries caps consecutive failed connection attempts before the
	// client gives up with a terminal Error status. Negative means retry
	// forever.
	MaxRetries int

	// RetryDelay is the delay before the first reconnect attempt; each
	// further attempt multiplies it by BackoffFactor up to MaxRetryDelay.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	BackoffFactor float64

	// Jitter is the fraction of the computed delay randomized around it,
	// in [0, 1]. 0.2 means the actual delay lands in [0.8d, 1.2d].
	Jitter float64

	// PingPeriod is how often a Ping command is sent to measure round
	// trips. Purely diagnostic; the server's heartbeat drives liveness.
	PingPeriod time.Duration

	// HandshakeTimeout bounds the WebSocket opening handshake.
	HandshakeTimeout time.Duration

	// SendBuffer is the capacity of the outgoing command queue.
	SendBuffer int
}

func (c Config) withDefaults() Config {
	if c.Renderer == "" {
		c.Renderer = model.RendererHTML
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.Jitter < 0 || c.Jitter > 1 {
		c.Jitter = DefaultJitter
	}
	if c.PingPeriod <= 0 {
		c.PingPeriod = DefaultPingPeriod
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	return c
}
