// Package credentials stores password hashes per username and runs the
// login flow on top of them.
//
// Persistence is delegated to a [Store].  Two implementations ship with the
// package: [MemoryStore] for tests and prototyping, and [BadgerStore] for an
// embedded on-disk database.
//
// [Authenticator] ties a Store to a password hasher.  It hashes on
// registration, verifies on login, spends a dummy hash on unknown usernames
// so response timing does not reveal which accounts exist, and rehashes
// stored hashes whose cost is out of date.
package credentials

import (
	"context"
	"time"
)

// Record is a stored credential.  Hash is a bcrypt crypt string; the
// plaintext password is never stored.
type Record struct {
	Username       string     `json:"username"`
	Hash           string     `json:"hash"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	FailedAttempts int        `json:"failed_attempts"`
}

// Store defines the persistence operations for [Record]s, keyed by
// username.  Implementations must be safe for concurrent use and must return
// copies, so callers can modify a returned record without affecting the
// store until they call Update.
type Store interface {
	// Create persists a new record.  Returns [ErrExists] when the username
	// is taken.
	Create(ctx context.Context, rec *Record) error

	// Find retrieves a record.  Returns [ErrNotFound] when absent.
	Find(ctx context.Context, username string) (*Record, error)

	// Update replaces an existing record.  Returns [ErrNotFound] when absent.
	Update(ctx context.Context, rec *Record) error

	// Delete removes a record.  Returns [ErrNotFound] when absent.
	Delete(ctx context.Context, username string) error

	// Usernames lists every stored username in ascending order.
	Usernames(ctx context.Context) ([]string, error)
}

func cloneRecord(r *Record) *Record {
	cp := *r
	if r.LastLoginAt != nil {
		t := *r.LastLoginAt
		cp.LastLoginAt = &t
	}
	return &cp
}
