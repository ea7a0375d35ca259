package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/decorly/decorly-backend/internal/core"
)

// cloudinaryStore implements core.ImageStore on top of Cloudinary.
type cloudinaryStore struct {
	client *cloudinary.Cloudinary
}

// NewCloudinaryStore creates an image store backed by the given Cloudinary
// account.
func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (core.ImageStore, error) {
	client, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &cloudinaryStore{client: client}, nil
}

// UploadImage uploads a base64 data URI and returns the hosted URL plus the
// public ID needed to destroy it later.
func (s *cloudinaryStore) UploadImage(ctx context.Context, dataURI, folder string) (*core.StoredImage, error) {
	if dataURI == "" {
		return nil, errors.New("dataURI cannot be empty for UploadImage operation")
	}

	resp, err := s.client.Upload.Upload(ctx, dataURI, uploader.UploadParams{Folder: folder})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if resp.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload rejected: %s", resp.Error.Message)
	}

	return &core.StoredImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

// DeleteImage removes a previously uploaded image by public ID.
func (s *cloudinaryStore) DeleteImage(ctx context.Context, publicID string) error {
	if publicID == "" {
		return errors.New("publicID cannot be empty for DeleteImage operation")
	}

	resp, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary destroy failed: %w", err)
	}
	if resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("cloudinary destroy returned %q for public ID '%s'", resp.Result, publicID)
	}
	return nil
}
