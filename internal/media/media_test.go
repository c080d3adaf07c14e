package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyumba/internal/apperr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestSaveAndDelete(t *testing.T) {
	s := New(t.TempDir())

	url, err := s.Save(bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/media/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	full, ok := s.Resolve(strings.TrimPrefix(url, URLPrefix))
	require.True(t, ok)
	got, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)

	require.NoError(t, s.Delete(url))
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	assert.True(t, apperr.Is(s.Delete(url), apperr.KindNotFound))
}

func TestSaveRejectsNonImages(t *testing.T) {
	s := New(t.TempDir())
	body := []byte("#!/bin/sh\necho hello\n")
	_, err := s.Save(bytes.NewReader(body), int64(len(body)))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestSaveRejectsOversize(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Save(bytes.NewReader(pngHeader), MaxUploadSize+1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadSize)...)
	_, err = s.Save(bytes.NewReader(big), 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	entries, _ := os.ReadDir(filepath.Join(s.Dir, uploadDir))
	assert.Empty(t, entries)
}

func TestResolveBlocksTraversal(t *testing.T) {
	s := New(t.TempDir())
	for _, p := range []string{"../etc/passwd", "uploads/../../x", "%2e%2e/secret", "/etc/passwd", ".", "a\x00b"} {
		_, ok := s.Resolve(p)
		assert.False(t, ok, p)
	}
	full, ok := s.Resolve("products/a.jpg")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(s.Dir, "products", "a.jpg"), full)
}

func TestDeleteOnlyUploads(t *testing.T) {
	s := New(t.TempDir())
	assert.True(t, apperr.Is(s.Delete("/media/products/a.jpg"), apperr.KindValidation))
	assert.True(t, apperr.Is(s.Delete("https://example.com/x.png"), apperr.KindValidation))
}
