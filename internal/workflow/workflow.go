// Package workflow runs the two-step create-artwork chain: write the
// record, then attach the optional image.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/msomdec/art-market/internal/domain"
)

// ErrBusy is returned when a submission arrives while another is running.
var ErrBusy = errors.New("an artwork submission is already in progress")

// State is a step of the create-artwork chain.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateImageUploading
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateImageUploading:
		return "image_uploading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }

// Creator is the subset of the gateway the workflow drives.
type Creator interface {
	CreateArtwork(ctx context.Context, draft domain.ArtworkDraft) (string, error)
	UploadImage(ctx context.Context, img domain.ImageUpload, artworkID string) (string, error)
}

// Transition is reported to the observer on every state change.
type Transition struct {
	From      State
	To        State
	ArtworkID string
	Err       error
}

// Result is the terminal report of a run. ArtworkID is set whenever the
// record was written, including when the image upload failed afterwards.
type Result struct {
	State     State
	ArtworkID string
	ImageURL  string
	Err       error
}

// Option customizes a CreateArtwork.
type Option func(*CreateArtwork)

// WithObserver registers fn to receive every transition, in order.
func WithObserver(fn func(Transition)) Option {
	return func(w *CreateArtwork) { w.observe = fn }
}

// WithRefresh registers fn to run after a successful run, just before the
// transition to StateDone is reported.
func WithRefresh(fn func(ctx context.Context)) Option {
	return func(w *CreateArtwork) { w.refresh = fn }
}

// CreateArtwork is the create-artwork state machine. At most one run is in
// flight at a time; steps are awaited strictly in sequence.
type CreateArtwork struct {
	creator Creator
	observe func(Transition)
	refresh func(ctx context.Context)

	mu    sync.Mutex
	state State
}

// New creates a CreateArtwork in StateIdle.
func New(creator Creator, opts ...Option) *CreateArtwork {
	w := &CreateArtwork{creator: creator}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current state.
func (w *CreateArtwork) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Reset returns a finished workflow to StateIdle. It has no effect while a
// run is in flight.
func (w *CreateArtwork) Reset() {
	w.mu.Lock()
	from := w.state
	if !from.Terminal() {
		w.mu.Unlock()
		return
	}
	w.state = StateIdle
	w.mu.Unlock()
	w.emit(Transition{From: from, To: StateIdle})
}

// Run submits draft and, when img is non-nil, uploads it for the new
// artwork. A failed upload leaves the record in place without an image.
// Run returns ErrBusy in Result.Err without touching state if another run
// is in flight.
func (w *CreateArtwork) Run(ctx context.Context, draft domain.ArtworkDraft, img *domain.ImageUpload) Result {
	w.mu.Lock()
	if w.state == StateSubmitting || w.state == StateImageUploading {
		current := w.state
		w.mu.Unlock()
		return Result{State: current, Err: ErrBusy}
	}
	from := w.state
	w.state = StateSubmitting
	w.mu.Unlock()
	w.emit(Transition{From: from, To: StateSubmitting})

	id, err := w.creator.CreateArtwork(ctx, draft)
	if err != nil {
		return w.fail("", err)
	}

	var url string
	if img != nil {
		w.move(StateImageUploading, id, nil)
		url, err = w.creator.UploadImage(ctx, *img, id)
		if err != nil {
			slog.Warn("artwork saved without image", "artwork_id", id, "error", err)
			return w.fail(id, err)
		}
	}

	if w.refresh != nil {
		w.refresh(ctx)
	}
	w.move(StateDone, id, nil)
	return Result{State: StateDone, ArtworkID: id, ImageURL: url}
}

func (w *CreateArtwork) fail(id string, err error) Result {
	w.move(StateFailed, id, err)
	return Result{State: StateFailed, ArtworkID: id, Err: err}
}

func (w *CreateArtwork) move(to State, id string, err error) {
	w.mu.Lock()
	from := w.state
	w.state = to
	w.mu.Unlock()
	w.emit(Transition{From: from, To: to, ArtworkID: id, Err: err})
}

func (w *CreateArtwork) emit(t Transition) {
	if w.observe != nil {
		w.observe(t)
	}
}
