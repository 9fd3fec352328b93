package client

import "fmt"

// StatusKind enumerates the connection lifecycle states.
type StatusKind string

const (
	StatusConnecting   StatusKind = "connecting"
	StatusConnected    StatusKind = "connected"
	StatusClosed       StatusKind = "closed"
	StatusReconnecting StatusKind = "reconnecting"
	StatusError        StatusKind = "error"    // terminal: retry budget exhausted
	StatusDisposed     StatusKind = "disposed" // terminal: Close was called
)

// Terminal reports whether no further status change will follow.
func (k StatusKind) Terminal() bool {
	return k == StatusError || k == StatusDisposed
}

// Status is one snapshot of the connection lifecycle, published on
// StatusChanges and readable at any time via Status.
type Status struct {
	Kind StatusKind
	// Attempt is the reconnect attempt number, counted from 1. Zero for
	// states outside the retry loop.
	Attempt int
	// Err carries the failure that caused this transition, if any.
	Err error
}

func (s Status) String() string {
	switch {
	case s.Kind == StatusReconnecting:
		return fmt.Sprintf("%s (attempt %d): %v", s.Kind, s.Attempt, s.Err)
	case s.Err != nil:
		return fmt.Sprintf("%s: %v", s.Kind, s.Err)
	default:
		return string(s.Kind)
	}
}
