package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOperationKind  = errors.New("unknown operation kind")
	ErrMissingParameter      = errors.New("missing required parameter")
	ErrInvalidArguments      = errors.New("invalid arguments")
	ErrTransport             = errors.New("transport failure")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrMalformedResponseBody = errors.New("malformed response body")
)

// StatusError reports a non-200 answer from the platform.
type StatusError struct {
	Method      string
	StatusCode  int
	Description string
	Body        []byte
}

func (e *StatusError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram API error %d on %s: %s", e.StatusCode, e.Method, e.Description)
	}
	return fmt.Sprintf("telegram API error %d on %s", e.StatusCode, e.Method)
}

func (e *StatusError) Is(target error) bool { return target == ErrInvalidStatus }
