package domain

import (
	"context"
	"fmt"
	"math"
)

// DefaultSellerName is denormalized onto an artwork when the seller has no
// account document or its name is empty.
const DefaultSellerName = "Anonymous Artist"

// Artwork is a listed marketplace item. It is stored as a flat field map
// under artworks/{id} in the realtime store.
type Artwork struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	SellerID    string  `json:"sellerId"`
	SellerName  string  `json:"sellerName"` // snapshot taken at creation
	CreatedAt   int64   `json:"createdAt"`  // ms since epoch
}

// ArtworkDraft is the seller-supplied part of a new artwork.
type ArtworkDraft struct {
	Title       string
	Description string
	Price       float64
	Category    string
}

// Validate checks the draft fields a seller must supply.
func (d ArtworkDraft) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if math.IsNaN(d.Price) || math.IsInf(d.Price, 0) {
		return fmt.Errorf("%w: price must be a finite number", ErrInvalidInput)
	}
	if d.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

// ArtworkStore is the realtime key-value store holding artworks/{id}.
// List and ListBySeller return records in push-key order.
type ArtworkStore interface {
	// NewID allocates a push key for a record that has not been written yet.
	NewID() string
	Set(ctx context.Context, artwork *Artwork) error
	Get(ctx context.Context, id string) (*Artwork, error)
	// SetImageURL patches the single imageUrl child of artworks/{id}.
	SetImageURL(ctx context.Context, id, url string) error
	ListBySeller(ctx context.Context, sellerID string) ([]Artwork, error)
	List(ctx context.Context) ([]Artwork, error)
	Delete(ctx context.Context, id string) error
}
