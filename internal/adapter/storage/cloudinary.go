// Package storage persists uploaded binaries and returns their public URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/neomorfeo/rentiq/internal/domain"
)

// Compile-time check: Cloudinary implements domain.FileStore.
var _ domain.FileStore = (*Cloudinary)(nil)

// Cloudinary uploads files to a Cloudinary folder.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary creates a store from a CLOUDINARY_URL style connection string.
func NewCloudinary(url, folder string) (*Cloudinary, error) {
	if url == "" {
		return nil, errors.New("cloudinary url is empty")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("configuring cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     publicID(filename),
		ResourceType: "auto",
	})
	if err != nil {
		return "", &domain.TransientError{Err: fmt.Errorf("uploading %s: %w", filename, err)}
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("uploading %s: %s", filename, resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// publicID strips directories and the extension so Cloudinary derives the
// format itself. An empty result lets Cloudinary assign a random id.
func publicID(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
