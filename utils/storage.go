package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrUnsupportedImage = errors.New("only jpg, png, gif and webp images are allowed")

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// DiskAvatarStore writes avatars under <root>/avatars and serves them from /uploads/avatars
type DiskAvatarStore struct {
	root    string
	maxSize int64
}

func NewDiskAvatarStore(root string, maxSize int64) *DiskAvatarStore {
	return &DiskAvatarStore{root: root, maxSize: maxSize}
}

// FileTooLargeError is returned for uploads above the size limit
type FileTooLargeError struct {
	Limit int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file exceeds the %d byte limit", e.Limit)
}

func (s *DiskAvatarStore) Save(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", ErrUnsupportedImage
	}
	if contentType := file.Header.Get("Content-Type"); contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedImage
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", &FileTooLargeError{Limit: s.maxSize}
	}

	dir := filepath.Join(s.root, "avatars")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar directory: %w", err)
	}

	name := uuid.New().String() + ext
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	if err := writeFile(filepath.Join(dir, name), src); err != nil {
		return "", err
	}
	return "/uploads/avatars/" + name, nil
}

// writeFile copies src to path. A failed copy leaves no file behind.
func writeFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create avatar file: %w", err)
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write avatar file: %w", err)
	}
	return nil
}
