package handler

import "github.com/msomdec/art-market/internal/domain"

// AccountDTO is the JSON representation of a user profile.
type AccountDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Bio               string `json:"bio"`
	ProfilePictureURL string `json:"profilePictureUrl"`
	IsSeller          bool   `json:"isSeller"`
	CreatedAt         int64  `json:"createdAt"`
}

func toAccountDTO(a *domain.Account) AccountDTO {
	return AccountDTO{
		ID:                a.ID,
		Name:              a.Name,
		Email:             a.Email,
		Bio:               a.Bio,
		ProfilePictureURL: a.ProfilePictureURL,
		IsSeller:          a.IsSeller,
		CreatedAt:         a.CreatedAt,
	}
}

// ArtworkDTO is the JSON representation of an artwork.
type ArtworkDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl"`
	SellerID    string  `json:"sellerId"`
	SellerName  string  `json:"sellerName"`
	CreatedAt   int64   `json:"createdAt"`
}

func toArtworkDTO(a domain.Artwork) ArtworkDTO {
	return ArtworkDTO{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Price:       a.Price,
		Category:    a.Category,
		ImageURL:    a.ImageURL,
		SellerID:    a.SellerID,
		SellerName:  a.SellerName,
		CreatedAt:   a.CreatedAt,
	}
}

func toArtworkDTOs(artworks []domain.Artwork) []ArtworkDTO {
	dtos := make([]ArtworkDTO, len(artworks))
	for i, a := range artworks {
		dtos[i] = toArtworkDTO(a)
	}
	return dtos
}

// ArtworkRequest is the JSON body of a create-artwork API call.
type ArtworkRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

func (r ArtworkRequest) draft() domain.ArtworkDraft {
	return domain.ArtworkDraft{
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
	}
}
