package journal

import (
	"context"
	"fmt"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/blobstore"
	"github.com/starford/unpack/internal/extract"
)

// UploadedPhoto describes a stored page photo.
type UploadedPhoto struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Checksum string `json:"checksum"`
}

// UploadPhoto stores a page photo for ownerID.
func (s *Service) UploadPhoto(_ context.Context, ownerID, contentType string, data []byte) (UploadedPhoto, error) {
	key, err := s.photos.Put(ownerID, contentType, data)
	if err != nil {
		return UploadedPhoto{}, err
	}
	return UploadedPhoto{Key: key, URL: s.signer.URL(key), Checksum: blobstore.Checksum(data)}, nil
}

// loadPages reads the owner's photos in order.
func (s *Service) loadPages(ownerID string, keys []string) ([]extract.Page, error) {
	pages := make([]extract.Page, len(keys))
	for i, k := range keys {
		if err := s.ownsPhoto(ownerID, k); err != nil {
			return nil, err
		}
		data, err := s.photos.Read(k)
		if err != nil {
			return nil, fmt.Errorf("photo %s: %w", k, apperr.ErrNotFound)
		}
		pages[i] = extract.Page{Key: k, Data: data, ContentType: blobstore.ContentType(k)}
	}
	return pages, nil
}

func (s *Service) ownsPhoto(ownerID, key string) error {
	if blobstore.OwnerOf(key) != ownerID {
		return fmt.Errorf("photo %s: %w", key, apperr.ErrForbidden)
	}
	return nil
}
