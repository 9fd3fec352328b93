package client

import "errors"

var (
	// ErrDisposed is returned once Close has been called; a disposed
	// client never reconnects and rejects all further operations.
	ErrDisposed = errors.New("client is disposed")

	// ErrNotConnected is returned by SendCommand while no live socket
	// exists (connecting, reconnecting or closed).
	ErrNotConnected = errors.New("client is not connected")

	// ErrAlreadyStarted is returned by a second Connect call.
	ErrAlreadyStarted = errors.New("client already started")

	// ErrSendBufferFull is returned when the outgoing command queue is
	// full; the command was not sent.
	ErrSendBufferFull = errors.New("command send buffer full")
)
