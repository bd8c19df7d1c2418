package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUpdateKind      = errors.New("unknown update kind")
	ErrUnsupportedMessageKind = errors.New("unsupported message kind")
	ErrUnsupportedEventKind   = errors.New("unsupported event kind")
	ErrInvalidPattern         = errors.New("invalid command pattern")
	ErrPayloadMismatch        = errors.New("handler received unexpected payload")
)

// HandlerError wraps a failure returned (or panicked) by a handler call.
type HandlerError struct {
	Key string
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %q: %v", e.Key, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// HandlerRejection wraps the failure of an asynchronous handler result.
type HandlerRejection struct {
	Key string
	Err error
}

func (e *HandlerRejection) Error() string {
	return fmt.Sprintf("handler %q rejected: %v", e.Key, e.Err)
}

func (e *HandlerRejection) Unwrap() error { return e.Err }
