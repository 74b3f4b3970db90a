// Package view renders the marketplace screens and the fragments patched
// into them over Datastar server-sent events.
package view

import "strconv"

// Element IDs targeted by SSE patches.
const (
	UploadStatusID = "upload-status"
	ArtworkListID  = "artwork-list"
)

// RegisterForm is the sticky part of the registration form.
type RegisterForm struct {
	Email    string
	Name     string
	IsSeller bool
}

// FormatPrice renders a price with two decimals.
func FormatPrice(p float64) string { return strconv.FormatFloat(p, 'f', 2, 64) }

func deleteAction(artworkID string) string {
	return "@post('/seller/artworks/" + artworkID + "/delete')"
}
