// Package archive converts between in-memory collections and the portable
// archive formats: a single JSON document, or a gzip tarball holding one CSV
// file per collection plus product photo binaries under photos/.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/transfer"
	"go.uber.org/zap"
)

// Archive MIME types
const (
	MIMEJSON  = "application/json"
	MIMEGzip  = "application/gzip"
	MIMEXGzip = "application/x-gzip"
)

// MIMEFromFileName guesses the archive type from a file name. Unknown
// extensions give application/octet-stream, which decodes to nothing.
func MIMEFromFileName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"), filepath.Ext(lower) == ".gz":
		return MIMEGzip
	case filepath.Ext(lower) == ".json":
		return MIMEJSON
	}
	return "application/octet-stream"
}

// photosDir is the tarball directory holding product photo binaries.
const photosDir = "photos"

// Format is an export format
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// PhotoStore is the live storage for product photo binaries.
type PhotoStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
}

// Encoded is a serialized archive
type Encoded struct {
	ContentType string
	Extension   string
	Data        []byte
}

// Codec decodes uploaded archives and encodes exports.
type Codec struct {
	photos  PhotoStore
	tempDir string
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Codec
type Option func(*Codec)

// WithTempDir sets the parent directory for extracted tarballs (default os.TempDir).
func WithTempDir(dir string) Option {
	return func(c *Codec) {
		c.tempDir = dir
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithClock overrides the time source used for tar entry timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a Codec that moves photos in and out of photos.
func NewCodec(photos PhotoStore, opts ...Option) *Codec {
	c := &Codec{
		photos: photos,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode parses an uploaded archive according to its MIME type. Unsupported
// types decode to an empty dataset. Photo binaries of a tarball are staged,
// not stored: the caller publishes them through Archive.Photos and must
// Close the archive.
func (c *Codec) Decode(ctx context.Context, mimeType string, r io.Reader) (*transfer.Archive, error) {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}

	switch mediaType {
	case MIMEJSON:
		dataset, err := DecodeJSON(r)
		if err != nil {
			return nil, err
		}
		return &transfer.Archive{Dataset: dataset}, nil
	case MIMEGzip, MIMEXGzip:
		return c.decodeTarball(ctx, r)
	default:
		c.logger.Warn("Unsupported archive type, nothing to import", zap.String("mime_type", mimeType))
		return &transfer.Archive{Dataset: transfer.Dataset{}}, nil
	}
}

func (c *Codec) decodeTarball(ctx context.Context, r io.Reader) (*transfer.Archive, error) {
	dir, err := os.MkdirTemp(c.tempDir, "import-*")
	if err != nil {
		return nil, fmt.Errorf("create extraction directory: %w", err)
	}
	staged := false
	defer func() {
		if !staged {
			c.removeDir(dir)
		}
	}()

	if err := ExtractTarball(r, dir); err != nil {
		return nil, transfer.NewGenericError(fmt.Sprintf("invalid archive: %v", err))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	dataset := transfer.Dataset{}
	var photos []stagedPhoto
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".csv")

		records, err := decodeCSVFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, transfer.NewGenericError(fmt.Sprintf("%q: %v", entry.Name(), err))
		}
		if t, ok := transfer.ParseDataType(name); ok && t == transfer.ProductPhotos {
			found, err := c.stagePhotos(dir, records)
			if err != nil {
				return nil, err
			}
			photos = append(photos, found...)
		}

		rows := make([]any, len(records))
		for i, record := range records {
			rows[i] = record
		}
		dataset[name] = rows
	}

	archive := &transfer.Archive{Dataset: dataset}
	if len(photos) > 0 {
		staged = true
		archive.Photos = &photoStage{store: c.photos, dir: dir, photos: photos, logger: c.logger}
	}
	return archive, nil
}

func (c *Codec) removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		c.logger.Warn("Failed to remove extraction directory", zap.String("dir", dir), zap.Error(err))
	}
}

func decodeCSVFile(name string) ([]transfer.Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeCSV(f)
}

// stagePhotos rewrites each record's path to the extension-less storage key
// and returns the extracted binaries behind those paths. A record whose
// binary is not in the archive keeps its key and stages nothing.
func (c *Codec) stagePhotos(dir string, records []transfer.Record) ([]stagedPhoto, error) {
	var staged []stagedPhoto
	for _, record := range records {
		name, ok := record["path"].(string)
		if !ok || name == "" {
			continue
		}
		name = strings.TrimPrefix(path.Clean(name), photosDir+"/")
		if !filepath.IsLocal(name) {
			return nil, transfer.NewGenericError(fmt.Sprintf("photo path %q escapes the archive", name))
		}
		key := strings.TrimSuffix(name, path.Ext(name))
		record["path"] = key

		src := filepath.Join(dir, photosDir, filepath.FromSlash(name))
		if info, err := os.Stat(src); err != nil || !info.Mode().IsRegular() {
			c.logger.Warn("Photo missing from archive", zap.String("path", name))
			continue
		}
		contentType, _ := record["mimeType"].(string)
		staged = append(staged, stagedPhoto{src: src, key: key, contentType: contentType})
	}
	return staged, nil
}

// Encode serializes the collections in order.
func (c *Codec) Encode(ctx context.Context, format Format, order []transfer.DataType, data map[transfer.DataType][]transfer.Record) (*Encoded, error) {
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		if err := EncodeJSON(&buf, order, data); err != nil {
			return nil, err
		}
		return &Encoded{ContentType: MIMEJSON, Extension: "json", Data: buf.Bytes()}, nil
	case FormatCSV:
		if err := c.encodeTarball(ctx, &buf, order, data); err != nil {
			return nil, err
		}
		return &Encoded{ContentType: MIMEGzip, Extension: "tar.gz", Data: buf.Bytes()}, nil
	default:
		return nil, transfer.NewGenericError(fmt.Sprintf("%q is not supported export format", string(format)))
	}
}

func (c *Codec) encodeTarball(ctx context.Context, w io.Writer, order []transfer.DataType, data map[transfer.DataType][]transfer.Record) error {
	tw := NewTarWriter(w, c.now())

	var photos []transfer.Record
	for _, t := range order {
		records := data[t]
		if t == transfer.ProductPhotos {
			photos = records
			records = archivePhotoRecords(records)
		}

		var file bytes.Buffer
		if err := EncodeCSV(&file, records); err != nil {
			return fmt.Errorf("encode %s: %w", t, err)
		}
		if err := tw.AddBytes(string(t)+".csv", file.Bytes()); err != nil {
			return err
		}
	}

	for _, record := range photos {
		if err := c.addPhoto(ctx, tw, record); err != nil {
			return err
		}
	}
	return tw.Close()
}

// archivePhotoRecords copies records with each path pointing at the photo's
// file name inside the archive.
func archivePhotoRecords(records []transfer.Record) []transfer.Record {
	out := make([]transfer.Record, len(records))
	for i, record := range records {
		clone := make(transfer.Record, len(record))
		for k, v := range record {
			clone[k] = v
		}
		if key, ok := record["path"].(string); ok && key != "" {
			mimeType, _ := record["mimeType"].(string)
			clone["path"] = key + catalog.PhotoExtension(mimeType)
		}
		out[i] = clone
	}
	return out
}

func (c *Codec) addPhoto(ctx context.Context, tw *TarWriter, record transfer.Record) error {
	key, ok := record["path"].(string)
	if !ok || key == "" {
		return nil
	}
	mimeType, _ := record["mimeType"].(string)

	body, size, err := c.photos.Get(ctx, key)
	if err != nil {
		c.logger.Warn("Photo not found in storage, exporting record only",
			zap.String("path", key), zap.Error(err))
		return nil
	}
	defer body.Close()

	return tw.AddFile(photosDir+"/"+key+catalog.PhotoExtension(mimeType), size, body)
}
