package photoprovider

import (
	"context"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the remote source does not know the requested album.
	ErrNotFound = fmt.Errorf("remote album not found")

	// ErrRateLimited means the remote source is throttling us. Callers should
	// surface this to the operator rather than retry.
	ErrRateLimited = fmt.Errorf("remote source rate limit exceeded")
)

/*
RemoteAlbum is the provider's view of one album. The core treats everything
in here as untrusted input from a remote system: no ordering stability and no
uniqueness guarantees beyond the remote ID within one owner account.
*/
type RemoteAlbum struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	CoverURL    string
	PhotoCount  int
	URL         string
	CreatedAt   time.Time
}

// RemotePhoto carries the size variants the gallery viewer and the admin
// cover picker need.
type RemotePhoto struct {
	ID           string
	Title        string
	ThumbnailURL string
	MediumURL    string
	LargeURL     string
	XLargeURL    string
}

/*
Provider is the capability set the sync and gallery code needs from a photo
hosting service. Implementations talk to a slow, unreliable remote; every
method takes a context and may fail with ErrNotFound, ErrRateLimited, or a
wrapped transport error.
*/
type Provider interface {
	ListOwnerAlbums(ctx context.Context, ownerID string) ([]RemoteAlbum, error)
	GetAlbum(ctx context.Context, ownerID, remoteAlbumID string) (*RemoteAlbum, error)
	ListAlbumPhotos(ctx context.Context, remoteAlbumID string, pageSize int) ([]RemotePhoto, error)
}
