package service

import (
	"context"
	"fmt"

	"github.com/videotube/videotube-api/internal/core/domain"
	"github.com/videotube/videotube-api/internal/core/ports"
)

// MediaCleaner disposes of stored media that is no longer referenced.
// Discard must not block the caller.
type MediaCleaner interface {
	Discard(url string)
}

func uploadMedia(ctx context.Context, storage ports.MediaStorage, file ports.MediaFile) (*ports.UploadedMedia, error) {
	uploaded, err := storage.Upload(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMediaUpload, err)
	}
	if uploaded == nil || uploaded.URL == "" {
		return nil, domain.ErrMediaUpload
	}
	return uploaded, nil
}
