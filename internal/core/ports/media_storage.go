package ports

import (
	"context"
	"io"
)

// MediaFile is an uploaded file handed from the transport layer to the core.
type MediaFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadedMedia describes a file stored by MediaStorage.
type UploadedMedia struct {
	URL      string
	PublicID string
}

// MediaStorage is the remote file host for avatars and cover images.
type MediaStorage interface {
	Upload(ctx context.Context, file MediaFile) (*UploadedMedia, error)
	// Delete removes the stored file with the given public id and reports
	// whether anything was removed.
	Delete(ctx context.Context, publicID string) (bool, error)
}
