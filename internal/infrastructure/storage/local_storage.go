package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var _ PhotoStorage = (*LocalPhotoStorage)(nil)

// LocalPhotoStorage keeps photos as plain files below an upload root
type LocalPhotoStorage struct {
	root   string
	logger *zap.Logger
}

// LocalOption configures LocalPhotoStorage
type LocalOption func(*LocalPhotoStorage)

// WithLocalLogger sets a custom logger for LocalPhotoStorage
func WithLocalLogger(logger *zap.Logger) LocalOption {
	return func(s *LocalPhotoStorage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewLocalPhotoStorage creates the upload root if needed.
func NewLocalPhotoStorage(root string, opts ...LocalOption) (*LocalPhotoStorage, error) {
	if root == "" {
		return nil, errors.New("upload root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	s := &LocalPhotoStorage{root: abs, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute upload root
func (s *LocalPhotoStorage) Root() string {
	return s.root
}

func (s *LocalPhotoStorage) path(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes the photo through a temp file so readers never see a partial body.
func (s *LocalPhotoStorage) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create photo directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create photo %q: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write photo %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("store photo %q: %w", key, err)
	}

	s.logger.Debug("Photo stored", zap.String("key", key), zap.Int64("size", n))
	return nil
}

// Get opens a photo. Missing files yield shared.ErrNotFound.
func (s *LocalPhotoStorage) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("photo %q: %w", key, shared.ErrNotFound)
		}
		return nil, 0, fmt.Errorf("open photo %q: %w", key, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat photo %q: %w", key, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, 0, fmt.Errorf("photo %q: %w", key, shared.ErrNotFound)
	}
	return f, info.Size(), nil
}

// Delete removes a photo. Deleting a missing key is not an error.
func (s *LocalPhotoStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete photo %q: %w", key, err)
	}
	return nil
}
