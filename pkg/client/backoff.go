package client

import (
	"math"
	"math/rand"
	"time"
)

// ReconnectDelay computes the base delay before reconnect attempt n
// (counted from 1): RetryDelay × BackoffFactor^(n-1), capped at
// MaxRetryDelay. Pure function of the attempt number, no timers.
func ReconnectDelay(attempt int, cfg Config) time.Duration {
	cfg = cfg.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	d := float64(cfg.RetryDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	if max := float64(cfg.MaxRetryDelay); d > max {
		d = max
	}
	return time.Duration(d)
}

// jitter spreads d uniformly over [d×(1-f), d×(1+f)] so a fleet of
// clients does not reconnect in lockstep. rnd must return a value in
// [0, 1); injected for deterministic tests.
func jitter(d time.Duration, f float64, rnd func() float64) time.Duration {
	if f <= 0 || d <= 0 {
		return d
	}
	spread := 1 - f + 2*f*rnd()
	return time.Duration(float64(d) * spread)
}

func (c *Client) reconnectDelay(attempt int) time.Duration {
	return jitter(ReconnectDelay(attempt, c.cfg), c.cfg.Jitter, rand.Float64)
}
