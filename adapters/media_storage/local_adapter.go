package media_storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/khoahotran/social-api/internal/application/service"
	"github.com/khoahotran/social-api/pkg/logger"
)

// LocalStore writes uploads below a root directory and serves them back
// under PublicBaseURL. Used for development and when no Cloudinary account is
// configured.
type LocalStore struct {
	fs            afero.Fs
	publicBaseURL string
}

var _ service.Uploader = (*LocalStore)(nil)

func NewLocalStore(root, publicBaseURL string, log logger.Logger) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root failed: %w", err)
	}
	log.Info("Local media storage ready.")
	return NewLocalStoreOnFs(afero.NewBasePathFs(osFs, root), publicBaseURL), nil
}

// NewLocalStoreOnFs uses fsys as the storage root.
func NewLocalStoreOnFs(fsys afero.Fs, publicBaseURL string) *LocalStore {
	return &LocalStore{fs: fsys, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func cleanUploadPath(p string) (string, error) {
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid upload path %q", p)
	}
	return cleaned, nil
}

func (s *LocalStore) Upload(_ context.Context, file io.Reader, uploadPath string) (string, error) {
	target, err := cleanUploadPath(uploadPath)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}
	if err := afero.WriteReader(s.fs, target, file); err != nil {
		return "", fmt.Errorf("write upload failed: %w", err)
	}
	return s.publicBaseURL + target, nil
}

func (s *LocalStore) Delete(_ context.Context, uploadPath string) error {
	target, err := cleanUploadPath(uploadPath)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete upload failed: %w", err)
	}
	return nil
}

// FileSystem exposes the stored files for static serving.
func (s *LocalStore) FileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir("/")
}
