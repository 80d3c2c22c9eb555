package blobstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

var ownerRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the photo directory
}

var _ Provider = (*FS)(nil)

// NewFS creates a photo store rooted at root, creating it if needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobstore: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("blobstore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blobstore: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute root directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a key against the root and rejects any result that
// escapes it.
func (f *FS) safePath(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute path %s", ErrInvalidKey, key)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("blobstore: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: escapes root: %s", ErrInvalidKey, key)
	}
	return abs, nil
}

// Put stores a photo as images/<owner>/<uuid><ext>.
func (f *FS) Put(ownerID, contentType string, data []byte) (string, error) {
	if err := validation.Validate(ownerID, validation.Required, validation.Match(ownerRe)); err != nil {
		return "", fmt.Errorf("blobstore: owner id: %w", err)
	}
	ext, ok := extByType[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	key := keyPrefix + ownerID + "/" + uuid.NewString() + ext
	if err := f.write(key, data); err != nil {
		return "", err
	}
	return key, nil
}

// Read returns the raw bytes of a stored photo.
func (f *FS) Read(key string) ([]byte, error) {
	abs, err := f.safePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("blobstore: read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes a stored photo.
func (f *FS) Delete(key string) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	return nil
}

// write stores content atomically: tmp file, fsync, rename.
func (f *FS) write(key string, content []byte) error {
	abs, err := f.safePath(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("blobstore: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".unpack-tmp-*")
	if err != nil {
		return fmt.Errorf("blobstore: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("blobstore: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("blobstore: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("blobstore: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("blobstore: rename: %w", err)
	}
	success = true
	return nil
}
