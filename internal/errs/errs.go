package errs

import "errors"

// Domain sentinel errors, mapped to HTTP/WebSocket responses in handlers.
var (
	ErrEmptyTalk      = errors.New("talk has no slides")
	ErrTooManyClients = errors.New("maximum number of clients exceeded")
	ErrClientNotFound = errors.New("client not found")
	ErrReceiverClosed = errors.New("notification receiver closed")
)
