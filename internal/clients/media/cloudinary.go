// Package media uploads profile pictures to Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// AvatarTransformation limits avatars to 400x400 with automatic quality.
const AvatarTransformation = "c_limit,w_400,h_400,q_auto"

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader stores avatars under a fixed folder, one asset per user.
type CloudinaryUploader struct {
	api    uploadAPI
	folder string
}

// NewCloudinaryUploader configures the client from a cloudinary:// URL.
func NewCloudinaryUploader(cloudinaryURL, folder string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	return &CloudinaryUploader{api: &cld.Upload, folder: folder}, nil
}

// UploadAvatar overwrites the user's previous avatar, which keeps the URL stable apart from its version.
func (u *CloudinaryUploader) UploadAvatar(ctx context.Context, file io.Reader, publicID string) (string, string, error) {
	params := uploader.UploadParams{
		Folder:         u.folder,
		PublicID:       publicID,
		Transformation: AvatarTransformation,
		Overwrite:      api.Bool(true),
		Invalidate:     api.Bool(true),
		ResourceType:   "image",
	}
	result, err := u.api.Upload(ctx, file, params)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload avatar to cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return "", "", fmt.Errorf("cloudinary rejected avatar: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", "", errors.New("cloudinary returned no secure url")
	}
	return result.SecureURL, result.PublicID, nil
}
