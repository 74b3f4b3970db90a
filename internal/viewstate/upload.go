package viewstate

import (
	"context"
	"errors"
	"sync"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/outcome"
	"github.com/msomdec/art-market/internal/workflow"
)

// UploadState is the display state of the add-artwork screen.
type UploadState struct {
	Loading   bool
	Success   bool
	Error     string
	Stage     workflow.State
	ArtworkID string
}

// Upload runs the create-artwork workflow and mirrors its transitions.
// When a seller listing is attached it is reloaded after a successful run.
type Upload struct {
	wf       *workflow.CreateArtwork
	onChange func(UploadState)

	mu    sync.Mutex
	state UploadState
}

// NewUpload creates an Upload. seller and onChange may be nil.
func NewUpload(creator workflow.Creator, seller *SellerListing, onChange func(UploadState)) *Upload {
	u := &Upload{onChange: onChange}
	opts := []workflow.Option{workflow.WithObserver(u.observe)}
	if seller != nil {
		opts = append(opts, workflow.WithRefresh(func(ctx context.Context) { seller.Load(ctx) }))
	}
	u.wf = workflow.New(creator, opts...)
	return u
}

// Submit runs the workflow to completion. It returns workflow.ErrBusy,
// leaving the state untouched, when a run is already in flight.
func (u *Upload) Submit(ctx context.Context, draft domain.ArtworkDraft, img *domain.ImageUpload) (UploadState, error) {
	res := u.wf.Run(ctx, draft, img)
	if errors.Is(res.Err, workflow.ErrBusy) {
		return u.State(), res.Err
	}
	return u.State(), nil
}

// Reset clears a finished upload.
func (u *Upload) Reset() { u.wf.Reset() }

// State returns the current state.
func (u *Upload) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *Upload) observe(t workflow.Transition) {
	next := UploadState{Stage: t.To, ArtworkID: t.ArtworkID}
	switch t.To {
	case workflow.StateSubmitting, workflow.StateImageUploading:
		next.Loading = true
	case workflow.StateDone:
		next.Success = true
	case workflow.StateFailed:
		fallback := MsgCreateArtwork
		if t.From == workflow.StateImageUploading {
			fallback = MsgUploadImage
		}
		next.Error = outcome.MessageOf(t.Err, fallback)
	case workflow.StateIdle:
		next = UploadState{}
	}

	u.mu.Lock()
	u.state = next
	u.mu.Unlock()

	if u.onChange != nil {
		u.onChange(next)
	}
}
