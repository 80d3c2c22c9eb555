// Package blobstore keeps uploaded page photos on the local file system and
// hands out signed, expiring URLs for them.
package blobstore

import (
	"errors"
	"strings"
)

// Provider stores photo bytes under opaque keys.
type Provider interface {
	// Put stores data for owner and returns its new key.
	Put(ownerID, contentType string, data []byte) (string, error)
	// Read returns the bytes stored under key.
	Read(key string) ([]byte, error)
	// Delete removes the object stored under key.
	Delete(key string) error
}

var (
	ErrUnsupportedType = errors.New("blobstore: unsupported content type")
	ErrInvalidKey      = errors.New("blobstore: invalid key")
)

const keyPrefix = "images/"

// OwnerOf returns the owner segment of a photo key, or "" when the key is
// not a photo key.
func OwnerOf(key string) string {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return ""
	}
	owner, file, ok := strings.Cut(rest, "/")
	if !ok || file == "" || strings.Contains(file, "/") {
		return ""
	}
	return owner
}

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

var typeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
}

// ContentType returns the MIME type implied by the key's extension.
func ContentType(key string) string {
	i := strings.LastIndexByte(key, '.')
	if i < 0 {
		return ""
	}
	return typeByExt[strings.ToLower(key[i:])]
}

// IsPhoto reports whether name has a supported image extension.
func IsPhoto(name string) bool {
	return ContentType(name) != ""
}
