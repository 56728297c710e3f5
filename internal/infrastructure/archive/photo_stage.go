package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

var errNoPhotoStore = errors.New("no photo storage configured")

type stagedPhoto struct {
	src         string
	key         string
	contentType string
}

// photoStage keeps the photos of an extracted tarball in its extraction
// directory until the import publishes them.
type photoStage struct {
	store  PhotoStore
	dir    string
	photos []stagedPhoto
	logger *zap.Logger

	created   []string
	closeOnce sync.Once
	closeErr  error
}

func (s *photoStage) Publish(ctx context.Context) error {
	if s.store == nil {
		return errNoPhotoStore
	}
	for _, p := range s.photos {
		if err := ctx.Err(); err != nil {
			return err
		}
		existed := s.exists(ctx, p.key)
		if err := s.put(ctx, p); err != nil {
			return fmt.Errorf("publish photo %s: %w", p.key, err)
		}
		if !existed {
			s.created = append(s.created, p.key)
		}
	}
	s.logger.Debug("Photos published", zap.Int("photos", len(s.photos)), zap.Int("created", len(s.created)))
	return nil
}

func (s *photoStage) exists(ctx context.Context, key string) bool {
	body, _, err := s.store.Get(ctx, key)
	if err != nil {
		return false
	}
	_ = body.Close()
	return true
}

func (s *photoStage) put(ctx context.Context, p stagedPhoto) error {
	f, err := os.Open(p.src)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	return s.store.Put(ctx, p.key, f, info.Size(), p.contentType)
}

func (s *photoStage) Revoke(ctx context.Context) error {
	var errs []error
	for _, key := range s.created {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("revoke photo %s: %w", key, err))
		}
	}
	if len(s.created) > 0 {
		s.logger.Info("Published photos revoked", zap.Int("photos", len(s.created)))
	}
	s.created = nil
	return errors.Join(errs...)
}

func (s *photoStage) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = os.RemoveAll(s.dir)
	})
	return s.closeErr
}
