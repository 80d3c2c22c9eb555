package api

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/unpack/internal/apperr"
)

// User is an authenticated journal owner.
type User struct {
	ID string `json:"id"`
}

// UserDirectory resolves bearer tokens to users.
type UserDirectory interface {
	FindByToken(ctx context.Context, token string) (User, error)
	Create(ctx context.Context, token string, u User) error
}

// StaticDirectory is an in-memory UserDirectory, typically loaded from
// configuration at startup.
type StaticDirectory struct {
	mu      sync.RWMutex
	byToken map[string]User
}

var _ UserDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory creates a directory from a token to user-id map.
func NewStaticDirectory(tokens map[string]string) *StaticDirectory {
	d := &StaticDirectory{byToken: make(map[string]User, len(tokens))}
	for tok, id := range tokens {
		d.byToken[tok] = User{ID: id}
	}
	return d
}

// FindByToken implements UserDirectory.
func (d *StaticDirectory) FindByToken(_ context.Context, token string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byToken[token]
	if !ok || token == "" {
		return User{}, apperr.ErrNotFound
	}
	return u, nil
}

// Create implements UserDirectory.
func (d *StaticDirectory) Create(_ context.Context, token string, u User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byToken[token]; ok {
		return fmt.Errorf("token for %s: %w", u.ID, apperr.ErrAlreadyExists)
	}
	d.byToken[token] = u
	return nil
}
