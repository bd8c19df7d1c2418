package core

import (
	"context"
	"fmt"
)

// Result is a handler's return value. The concrete type is one of Text,
// Buttons, Action (or *Action) and *Async. A nil Result resolves to the
// empty Action.
type Result interface {
	result()
}

// Text replies with a plain message.
type Text string

func (Text) result() {}

// Buttons replies with an inline keyboard whose labels double as callback data.
type Buttons []string

func (Buttons) result() {}

// An Action returned by a handler is used as the response unchanged.
func (Action) result() {}

// Async is a Result computed in the background.
type Async struct {
	done chan struct{}
	res  Result
	err  error
}

func (*Async) result() {}

// Go runs fn in its own goroutine and returns a Result that resolves to
// whatever fn returns. A panic in fn rejects the result.
func Go(ctx context.Context, fn func(ctx context.Context) (Result, error)) *Async {
	a := &Async{done: make(chan struct{})}
	go func() {
		defer close(a.done)
		defer func() {
			if p := recover(); p != nil {
				a.res, a.err = nil, fmt.Errorf("panic: %v", p)
			}
		}()
		a.res, a.err = fn(ctx)
	}()
	return a
}

// Resolved returns an already settled Async.
func Resolved(res Result, err error) *Async {
	a := &Async{done: make(chan struct{}), res: res, err: err}
	close(a.done)
	return a
}

// Await blocks until the result settles or ctx is done.
func (a *Async) Await(ctx context.Context) (Result, error) {
	select {
	case <-a.done:
		return a.res, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
