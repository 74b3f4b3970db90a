// Package viewstate maps operation outcomes onto the display state of each
// screen: a loading flag, the last good data and an error message.
package viewstate

import (
	"iter"
	"sync"

	"github.com/msomdec/art-market/internal/outcome"
)

// Messages shown when a failure carries no text of its own.
const (
	MsgUnknown       = "unknown error"
	MsgLoadArtworks  = "could not load artworks"
	MsgCreateArtwork = "could not create artwork"
	MsgUploadImage   = "could not upload image"
	MsgDeleteArtwork = "could not delete artwork"
	MsgUserNotFound  = "user not found"
)

// Display is what a screen renders for one concern.
type Display[T any] struct {
	Loading bool
	Data    T
	Error   string
}

// Container holds the Display for one concern and applies outcomes to it.
// It is safe for concurrent use.
type Container[T any] struct {
	mu       sync.Mutex
	state    Display[T]
	fallback string
}

// NewContainer creates a Container that substitutes fallback for empty
// failure messages.
func NewContainer[T any](fallback string) *Container[T] {
	return &Container[T]{fallback: fallback}
}

// Apply folds o into the state and returns the new snapshot. Pending and
// failure keep the last data.
func (c *Container[T]) Apply(o outcome.Outcome[T]) Display[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch o.Status() {
	case outcome.StatusPending:
		c.state.Loading = true
		c.state.Error = ""
	case outcome.StatusSuccess:
		v, _ := o.Value()
		c.state = Display[T]{Data: v}
	case outcome.StatusFailure:
		c.state.Loading = false
		c.state.Error = orDefault(o.Message(), c.fallback)
	}
	return c.state
}

// Track applies every outcome of seq in order and returns the final
// snapshot.
func (c *Container[T]) Track(seq iter.Seq[outcome.Outcome[T]]) Display[T] {
	var last Display[T]
	for o := range seq {
		last = c.Apply(o)
	}
	return last
}

// Fail records a failure from a related operation without touching data.
func (c *Container[T]) Fail(msg, fallback string) Display[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	c.state.Error = orDefault(msg, fallback)
	return c.state
}

// Snapshot returns the current state.
func (c *Container[T]) Snapshot() Display[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset clears the state.
func (c *Container[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Display[T]{}
}

func orDefault(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return MsgUnknown
}
