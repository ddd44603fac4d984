// Package storage turns uploaded files into stable URLs. The rest of the
// service treats it as an opaque collaborator.
package storage

import (
	"bytes"
	"context"
	"fmt"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Storage uploads a named binary payload and returns a stable URL for it.
type Storage interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// CloudinaryStorage stores uploads in a Cloudinary folder.
type CloudinaryStorage struct {
	cld    *cld.Cloudinary
	folder string
}

// NewCloudinaryStorage builds a client from a cloudinary:// URL
// (CLOUDINARY_URL format).
func NewCloudinaryStorage(url, folder string) (*CloudinaryStorage, error) {
	client, err := cld.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}
	return &CloudinaryStorage{cld: client, folder: folder}, nil
}

func (s *CloudinaryStorage) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: filename,
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", filename, err)
	}
	return res.SecureURL, nil
}
