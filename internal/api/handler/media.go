package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/videotube/videotube-api/internal/core/ports"
)

// formFile opens the multipart file field name. A missing field yields a nil
// file; the returned closer is always safe to call.
func formFile(c echo.Context, name string) (*ports.MediaFile, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(name)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s upload", name))
	}
	return openMedia(fh)
}

func openMedia(fh *multipart.FileHeader) (*ports.MediaFile, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &ports.MediaFile{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
