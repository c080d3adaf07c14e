// Package media stores uploaded images on local disk under MEDIA_DIR and
// resolves /media/* paths back to files.
package media

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
)

const (
	MaxUploadSize = 5 << 20 // 5 MiB
	URLPrefix     = "/media/"
	uploadDir     = "uploads"
)

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type Store struct {
	Dir string
}

// New resolves dir to an absolute path.
func New(dir string) *Store {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Store{Dir: dir}
}

// Save sniffs the content type of r, rejects anything that is not a
// supported image or exceeds MaxUploadSize, and writes it under uploads/
// with a fresh object id name. It returns the public URL.
func (s *Store) Save(r io.Reader, size int64) (string, error) {
	if size > MaxUploadSize {
		return "", apperr.Validation("File too large. Maximum size is 5MB")
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return "", apperr.Validation("No file uploaded")
		}
		return "", apperr.Upstream("Failed to read upload", err)
	}
	head = head[:n]
	ext, ok := allowed[http.DetectContentType(head)]
	if !ok {
		return "", apperr.Validation("Invalid file type. Only JPEG, PNG, WebP and GIF are allowed")
	}

	dir := filepath.Join(s.Dir, uploadDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Upstream("Failed to prepare upload directory", err)
	}
	name := domain.NewID() + ext
	full := filepath.Join(dir, name)
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", apperr.Upstream("Failed to store upload", err)
	}
	written, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), io.LimitReader(r, MaxUploadSize-int64(n)+1)))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written > MaxUploadSize {
		_ = os.Remove(full)
		return "", apperr.Validation("File too large. Maximum size is 5MB")
	}
	if err != nil {
		_ = os.Remove(full)
		return "", apperr.Upstream("Failed to store upload", err)
	}
	return URLPrefix + uploadDir + "/" + name, nil
}

// Delete removes an uploaded file by its public URL. Only files under
// uploads/ can be removed.
func (s *Store) Delete(url string) error {
	rel := strings.TrimPrefix(url, URLPrefix)
	if rel == url || !strings.HasPrefix(rel, uploadDir+"/") {
		return apperr.Validation("Invalid media URL")
	}
	full, ok := s.Resolve(rel)
	if !ok {
		return apperr.Validation("Invalid media URL")
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return apperr.NotFound("File not found")
		}
		return apperr.Upstream("Failed to delete file", err)
	}
	return nil
}

// Resolve maps a path relative to the media root to a file path, refusing
// traversal (raw or percent-encoded dots, NUL bytes, absolute paths).
func (s *Store) Resolve(rel string) (string, bool) {
	rawLower := strings.ToLower(rel)
	if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
		return "", false
	}
	clean := filepath.Clean(rel)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", false
	}
	return filepath.Join(s.Dir, clean), true
}
