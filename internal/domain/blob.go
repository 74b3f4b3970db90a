package domain

import "context"

// ImageUpload is a locally selected image waiting to be attached to an
// artwork.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BlobStore abstracts binary object storage addressed by path.
// Objects are handed out as durable download URLs and deleted by that URL.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, path string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// BlobReader is implemented by blob stores that serve their own download
// URLs instead of delegating to an external host.
type BlobReader interface {
	Get(ctx context.Context, path, token string) (data []byte, contentType string, err error)
}

// ArtworkImagePath returns the blob path of an artwork's image.
func ArtworkImagePath(artworkID string) string {
	return "artworks/" + artworkID + ".jpg"
}
