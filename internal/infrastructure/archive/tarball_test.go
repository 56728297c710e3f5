package archive

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTarball(t *testing.T, entries map[string]string, extra ...*tar.Header) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	for _, hdr := range extra {
		require.NoError(t, tw.WriteHeader(hdr))
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestTarWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTarWriter(&buf, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, tw.AddBytes("settings.csv", []byte("id\n1\n")))
	require.NoError(t, tw.AddBytes("photos/a/b.png", []byte{1, 2, 3}))
	require.NoError(t, tw.Close())

	dir := t.TempDir()
	require.NoError(t, ExtractTarball(&buf, dir))

	data, err := os.ReadFile(filepath.Join(dir, "settings.csv"))
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "photos", "a", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestExtractTarball_Rejects(t *testing.T) {
	t.Run("parent traversal", func(t *testing.T) {
		archive := buildTarball(t, map[string]string{"../evil.csv": "x"})
		err := ExtractTarball(bytes.NewReader(archive), t.TempDir())
		assert.ErrorIs(t, err, ErrUnsafePath)
	})

	t.Run("absolute path", func(t *testing.T) {
		archive := buildTarball(t, map[string]string{"/etc/evil.csv": "x"})
		err := ExtractTarball(bytes.NewReader(archive), t.TempDir())
		assert.ErrorIs(t, err, ErrUnsafePath)
	})

	t.Run("symlink", func(t *testing.T) {
		archive := buildTarball(t, nil, &tar.Header{Name: "link", Linkname: "/etc/passwd", Typeflag: tar.TypeSymlink})
		err := ExtractTarball(bytes.NewReader(archive), t.TempDir())
		assert.ErrorIs(t, err, ErrUnsupportedEntry)
	})

	t.Run("not gzip", func(t *testing.T) {
		err := ExtractTarball(bytes.NewReader([]byte("plain text")), t.TempDir())
		assert.Error(t, err)
	})
}
