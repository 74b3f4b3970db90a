package viewstate

import (
	"context"

	"github.com/msomdec/art-market/internal/domain"
	"github.com/msomdec/art-market/internal/outcome"
)

// ArtworkList is the display state of an artwork listing.
type ArtworkList = Display[[]domain.Artwork]

// SellerGateway is the part of the gateway the seller screen uses.
type SellerGateway interface {
	ListSellerArtworks(ctx context.Context) ([]domain.Artwork, error)
	DeleteArtwork(ctx context.Context, artworkID string) (bool, error)
}

// SellerListing is the signed-in seller's own artworks.
type SellerListing struct {
	gw   SellerGateway
	list *Container[[]domain.Artwork]
}

// NewSellerListing creates a SellerListing.
func NewSellerListing(gw SellerGateway) *SellerListing {
	return &SellerListing{gw: gw, list: NewContainer[[]domain.Artwork](MsgLoadArtworks)}
}

// Load fetches the seller's artworks.
func (s *SellerListing) Load(ctx context.Context) ArtworkList {
	return s.list.Track(outcome.Run(ctx, s.gw.ListSellerArtworks))
}

// Delete removes an artwork and reloads the list. On failure the current
// list is kept and the error is shown.
func (s *SellerListing) Delete(ctx context.Context, artworkID string) ArtworkList {
	res := outcome.Last(outcome.Run(ctx, func(ctx context.Context) (bool, error) {
		return s.gw.DeleteArtwork(ctx, artworkID)
	}))
	if res.Status() == outcome.StatusFailure {
		return s.list.Fail(res.Message(), MsgDeleteArtwork)
	}
	return s.Load(ctx)
}

// State returns the current listing.
func (s *SellerListing) State() ArtworkList { return s.list.Snapshot() }

// BuyerGateway is the part of the gateway the buyer screen uses.
type BuyerGateway interface {
	ListAllArtworks(ctx context.Context) ([]domain.Artwork, error)
}

// BuyerListing is every artwork on the market.
type BuyerListing struct {
	gw   BuyerGateway
	list *Container[[]domain.Artwork]
}

// NewBuyerListing creates a BuyerListing.
func NewBuyerListing(gw BuyerGateway) *BuyerListing {
	return &BuyerListing{gw: gw, list: NewContainer[[]domain.Artwork](MsgLoadArtworks)}
}

// Load fetches all artworks.
func (b *BuyerListing) Load(ctx context.Context) ArtworkList {
	return b.list.Track(outcome.Run(ctx, b.gw.ListAllArtworks))
}

// State returns the current listing.
func (b *BuyerListing) State() ArtworkList { return b.list.Snapshot() }
