package transferapp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memPhotos is an in-memory archive.PhotoStore
type memPhotos struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemPhotos() *memPhotos {
	return &memPhotos{files: map[string][]byte{}}
}

func (m *memPhotos) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = data
	return nil
}

func (m *memPhotos) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[key]
	if !ok {
		return nil, 0, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (m *memPhotos) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memPhotos) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	return keys
}

func photoTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := archive.NewTarWriter(&buf, time.Unix(0, 0))
	for name, body := range files {
		require.NoError(t, tw.AddBytes(name, []byte(body)))
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

const photosCSV = "id,productId,path,mimeType\n5,1,\"abc.png\",\"image/png\"\n"

func TestImportService_RejectedArchiveStoresNoPhotos(t *testing.T) {
	photos := newMemPhotos()
	svc := NewImportService(archive.NewCodec(photos, archive.WithTempDir(t.TempDir())), CollectionSet{})

	body := photoTarball(t, map[string]string{
		"productPhotos.csv": photosCSV,
		"photos/abc.png":    "PNGDATA",
	})
	report, err := svc.Import(context.Background(), ImportInput{
		MimeType: archive.MIMEGzip,
		Body:     bytes.NewReader(body),
		Clear:    true,
	})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, transfer.IsGenericError(err))
	assert.Equal(t, `"productPhotos" depends on "products"`, err.Error())
	assert.Empty(t, photos.keys())
}

func TestImportService_PhotosFollowTheProductPhotosStep(t *testing.T) {
	body := photoTarball(t, map[string]string{
		"products.csv":      "id,name\n1,\"Mug\"\n",
		"productPhotos.csv": photosCSV,
		"photos/abc.png":    "PNGDATA",
	})

	t.Run("published with the records", func(t *testing.T) {
		store := newMemStore()
		photos := newMemPhotos()
		tempRoot := t.TempDir()
		svc := NewImportService(archive.NewCodec(photos, archive.WithTempDir(tempRoot)), store.collections())

		report, err := svc.Import(context.Background(), ImportInput{MimeType: archive.MIMEGzip, Body: bytes.NewReader(body)})
		require.NoError(t, err)
		assert.Empty(t, report.Errors)
		assert.Equal(t, 1, report.Added["productPhotos"])
		require.Len(t, store.productPhotos.rows, 1)
		assert.Equal(t, "abc", store.productPhotos.rows[0].Path)
		assert.Equal(t, []byte("PNGDATA"), photos.files["abc"])
		leftovers, err := os.ReadDir(tempRoot)
		require.NoError(t, err)
		assert.Empty(t, leftovers)
	})

	t.Run("clear only stores nothing", func(t *testing.T) {
		photos := newMemPhotos()
		svc := NewImportService(archive.NewCodec(photos, archive.WithTempDir(t.TempDir())), newMemStore().collections())

		report, err := svc.Import(context.Background(), ImportInput{
			MimeType: archive.MIMEGzip, Body: bytes.NewReader(body), Clear: true, NoImport: true,
		})
		require.NoError(t, err)
		assert.Empty(t, report.Added)
		assert.Empty(t, photos.keys())
	})

	t.Run("failed photo records are revoked", func(t *testing.T) {
		store := newMemStore()
		store.productPhotos.createErr = errors.New("disk full")
		photos := newMemPhotos()
		svc := NewImportService(archive.NewCodec(photos, archive.WithTempDir(t.TempDir())), store.collections())

		report, err := svc.Import(context.Background(), ImportInput{MimeType: archive.MIMEGzip, Body: bytes.NewReader(body)})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Added["products"])
		assert.Equal(t, 0, report.Added["productPhotos"])
		require.Len(t, report.Errors, 1)
		assert.Empty(t, photos.keys())
	})
}

func TestImportService_PhotoStageLifecycle(t *testing.T) {
	dataset := transfer.Dataset{
		"products":      {row(map[string]any{"id": 1})},
		"productPhotos": {row(map[string]any{"id": 5, "productId": 1, "path": "abc"})},
	}

	t.Run("publish failure skips the records", func(t *testing.T) {
		products := new(MockCollection)
		productPhotos := new(MockCollection)
		products.On("Import", mock.Anything, mock.Anything, mock.Anything).Return(transfer.IDMap{1: 10}, nil)

		stage := new(MockPhotoStage)
		stage.On("Publish", mock.Anything).Return(errors.New("bucket gone")).Once()
		stage.On("Revoke", mock.Anything).Return(nil).Once()
		stage.On("Close").Return(nil).Once()

		svc := NewImportService(stubDecoder{dataset: dataset, photos: stage},
			CollectionSet{transfer.Products: products, transfer.ProductPhotos: productPhotos})

		report, err := svc.Import(context.Background(), ImportInput{})
		require.NoError(t, err)
		assert.Equal(t, []string{`"productPhotos" photos: bucket gone`}, report.Errors)
		productPhotos.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything)
		stage.AssertExpectations(t)
	})

	t.Run("rejected archive is closed unpublished", func(t *testing.T) {
		stage := new(MockPhotoStage)
		stage.On("Close").Return(nil).Once()

		svc := NewImportService(stubDecoder{
			dataset: transfer.Dataset{"productPhotos": dataset["productPhotos"]},
			photos:  stage,
		}, CollectionSet{})

		_, err := svc.Import(context.Background(), ImportInput{})
		require.Error(t, err)
		stage.AssertNotCalled(t, "Publish", mock.Anything)
		stage.AssertExpectations(t)
	})
}
