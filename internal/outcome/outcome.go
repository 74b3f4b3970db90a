// Package outcome models the progress of an asynchronous operation as a
// three-state value: pending, success with a payload, or failure with a
// human-readable message.
package outcome

import (
	"context"
	"iter"
)

// Status identifies which of the three states an Outcome is in.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome holds exactly one of: pending, a success payload, or a failure
// message. The zero value is pending.
type Outcome[T any] struct {
	status  Status
	value   T
	message string
}

// Pending returns an outcome with no payload.
func Pending[T any]() Outcome[T] {
	return Outcome[T]{status: StatusPending}
}

// Success returns a terminal outcome carrying v.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{status: StatusSuccess, value: v}
}

// Failure returns a terminal outcome carrying a message.
func Failure[T any](message string) Outcome[T] {
	return Outcome[T]{status: StatusFailure, message: message}
}

// Status reports the active state.
func (o Outcome[T]) Status() Status { return o.status }

// Terminal reports whether the outcome is success or failure.
func (o Outcome[T]) Terminal() bool { return o.status != StatusPending }

// Value returns the success payload. ok is false for any other state.
func (o Outcome[T]) Value() (v T, ok bool) {
	return o.value, o.status == StatusSuccess
}

// Message returns the failure message, or "" for any other state.
func (o Outcome[T]) Message() string {
	if o.status != StatusFailure {
		return ""
	}
	return o.message
}

// Match dispatches on the active state. All three branches are required.
func Match[T, R any](o Outcome[T], pending func() R, success func(T) R, failure func(string) R) R {
	switch o.status {
	case StatusSuccess:
		return success(o.value)
	case StatusFailure:
		return failure(o.message)
	default:
		return pending()
	}
}

// FromResult converts a call result into a terminal outcome. A nil error
// yields success; otherwise the error is reduced to its message.
func FromResult[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Failure[T](MessageOf(err, ""))
	}
	return Success(v)
}

// MessageOf reduces err to a display message, substituting fallback when
// the error carries no text.
func MessageOf(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// Run returns a sequence that yields pending, invokes fn, then yields the
// single terminal outcome of the call. fn is not invoked if the consumer
// stops after the pending value.
func Run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) iter.Seq[Outcome[T]] {
	return func(yield func(Outcome[T]) bool) {
		if !yield(Pending[T]()) {
			return
		}
		yield(FromResult(fn(ctx)))
	}
}

// Last drains seq and returns the final outcome it produced.
func Last[T any](seq iter.Seq[Outcome[T]]) Outcome[T] {
	last := Pending[T]()
	for o := range seq {
		last = o
	}
	return last
}
