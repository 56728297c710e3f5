package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// TarWriter writes a gzip-compressed tar stream.
type TarWriter struct {
	gz      *gzip.Writer
	tw      *tar.Writer
	modTime time.Time
}

// NewTarWriter wraps w. Every entry is stamped with modTime.
func NewTarWriter(w io.Writer, modTime time.Time) *TarWriter {
	gz := gzip.NewWriter(w)
	return &TarWriter{gz: gz, tw: tar.NewWriter(gz), modTime: modTime}
}

// AddFile copies size bytes from body into an entry called name.
func (t *TarWriter) AddFile(name string, size int64, body io.Reader) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  t.modTime,
		Typeflag: tar.TypeReg,
	}
	if err := t.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", name, err)
	}
	if _, err := io.CopyN(t.tw, body, size); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// AddBytes adds an entry holding data.
func (t *TarWriter) AddBytes(name string, data []byte) error {
	return t.AddFile(name, int64(len(data)), bytes.NewReader(data))
}

// Close flushes the tar and gzip streams.
func (t *TarWriter) Close() error {
	if err := t.tw.Close(); err != nil {
		return err
	}
	return t.gz.Close()
}

// ExtractTarball unpacks a gzip-compressed tar stream into dir. Entries that
// would land outside dir, and anything other than regular files and
// directories, are rejected.
func ExtractTarball(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		name := path.Clean(hdr.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
		}
		target := filepath.Join(dir, filepath.FromSlash(name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnsupportedEntry, hdr.Name)
		}
	}
}

func writeEntry(target string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
