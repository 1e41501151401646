package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record is a single login session.
type Record struct {
	// ID is the opaque session identifier stored in the cookie.
	ID string

	// User is the authenticated username.
	User string

	// Admin reports whether the user holds the superuser flag.
	Admin bool

	// CreatedAt is when the session was established.
	CreatedAt time.Time

	// ExpiresAt is when the session stops being valid.
	ExpiresAt time.Time
}

// Expired reports whether the record is past its deadline at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Store is the persistence backend for login sessions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a record, overwriting any record with the same ID.
	Save(ctx context.Context, rec Record) error

	// Load retrieves a record by ID.
	// Returns (nil, nil) if the record doesn't exist or has expired.
	Load(ctx context.Context, id string) (*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Touch extends a record's deadline without rewriting it.
	// Touching a missing record is not an error.
	Touch(ctx context.Context, id string, expiresAt time.Time) error

	// Close releases resources held by the store.
	Close() error
}

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("session: store closed")

// NewID returns a fresh unguessable session ID.
func NewID() string {
	return uuid.NewString()
}
