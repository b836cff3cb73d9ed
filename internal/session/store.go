package session

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned for unknown or expired sessions
	ErrNotFound = errors.New("session not found")

	// ErrExists is returned by Create when the id is already stored
	ErrExists = errors.New("session already exists")

	// ErrConflict is returned by Modify when concurrent writers kept
	// invalidating the change
	ErrConflict = errors.New("session changed concurrently")
)

// Store persists sessions by ID.
//
// Modify is the only way to change a stored session. It loads the current
// copy, applies fn and writes the result as one atomic step, so concurrent
// requests never overwrite each other's changes. It returns ErrNotFound and
// writes nothing when the session is not stored, which keeps a deleted
// session deleted. fn may run more than once and must not call the store.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context, sess *Session) error
	Modify(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
