package media_storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/internal/config"
	"github.com/khoahotran/social-api/pkg/logger"
)

type cloudinaryAdapter struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryAdapter(cfg config.Config, log logger.Logger) (service.Uploader, error) {
	if cfg.Cloudinary.CloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud_name has not config")
	}

	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.ApiKey,
		cfg.Cloudinary.ApiSecret,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot init cloudinary: %w", err)
	}

	log.Info("connect Cloudinary successfully.")
	return &cloudinaryAdapter{cld: cld}, nil
}

// splitUploadPath turns "uploads/posts/alice-<uuid>.jpg" into the folder
// "uploads/posts" and the public id "alice-<uuid>". Cloudinary keeps the
// format separately, so the extension is dropped.
func splitUploadPath(p string) (folder, publicID string) {
	folder, file := path.Split(p)
	return strings.TrimSuffix(folder, "/"), strings.TrimSuffix(file, path.Ext(file))
}

func (a *cloudinaryAdapter) Upload(ctx context.Context, file io.Reader, uploadPath string) (string, error) {
	folder, publicID := splitUploadPath(uploadPath)
	result, err := a.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID: publicID,
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

func (a *cloudinaryAdapter) Delete(ctx context.Context, uploadPath string) error {
	folder, publicID := splitUploadPath(uploadPath)
	_, err := a.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: path.Join(folder, publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete cloudinary: %w", err)
	}
	return nil
}
