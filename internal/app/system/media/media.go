// Package media abstracts the remote object store that holds posters and
// trailers. Handlers depend on the Store interface; the Cloudinary
// implementation lives in cloudinary.go.
package media

import (
	"context"
	"errors"
	"io"
)

// Kinds of remote asset. The kind travels with the public id because the
// remote store namespaces images and videos separately.
const (
	KindImage = "image"
	KindVideo = "video"
)

// ErrNotConfirmed is returned when the remote store did not acknowledge a
// release with "ok". Mutations that release media must treat this as fatal:
// a local record must never outlive proof that its remote objects are gone,
// and must never be deleted while they might still exist.
var ErrNotConfirmed = errors.New("remote media release not confirmed")

// Asset is the descriptor persisted alongside a movie: the serving URL, the
// id needed to release the remote object, and (for posters) responsive
// rendition URLs, widest first.
type Asset struct {
	URL        string
	PublicID   string
	Responsive []string
}

// Store is the narrow surface the catalog needs from the media provider.
type Store interface {
	// UploadPoster stores an image, producing a 1280×720 primary rendition
	// and up to 3 responsive width variants.
	UploadPoster(ctx context.Context, r io.Reader) (Asset, error)

	// UploadTrailer stores a video as-is.
	UploadTrailer(ctx context.Context, r io.Reader) (Asset, error)

	// Destroy releases a remote object and returns ErrNotConfirmed unless
	// the provider acknowledged the deletion.
	Destroy(ctx context.Context, publicID, kind string) error
}
