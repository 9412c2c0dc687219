package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-sliced-bcrypt/hashing"
	"github.com/hasbyte1/go-sliced-bcrypt/password"
)

// PasswordHasher is what [Authenticator] needs from a hasher.
// [hashing.BcryptHasher] satisfies it.
type PasswordHasher interface {
	hashing.Hasher
	MakeContext(ctx context.Context, password string) (string, error)
	CheckContext(ctx context.Context, password, hash string) (bool, error)
	Dummy()
}

// Authenticator runs registration, login and password changes against a
// [Store].
type Authenticator struct {
	store  Store
	hasher PasswordHasher
	policy password.Policy
	log    logrus.FieldLogger
	now    func() time.Time
}

// AuthOption configures an [Authenticator].
type AuthOption func(*Authenticator)

// WithPolicy sets the policy new passwords must satisfy.  The default is
// [password.DefaultPolicy].
func WithPolicy(p password.Policy) AuthOption {
	return func(a *Authenticator) { a.policy = p }
}

// WithLogger sets the logger.  The default is logrus' standard logger.
func WithLogger(l logrus.FieldLogger) AuthOption {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) AuthOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAuthenticator returns an Authenticator storing hashes produced by
// hasher in store.
func NewAuthenticator(store Store, hasher PasswordHasher, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		store:  store,
		hasher: hasher,
		policy: password.DefaultPolicy(),
		log:    logrus.StandardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register checks pw against the policy, hashes it and creates a record.
// A policy failure wraps both [ErrWeakPassword] and the password package
// reason (e.g. [password.ErrTooShort]).
func (a *Authenticator) Register(ctx context.Context, username, pw string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if err := a.policy.Check(pw); err != nil {
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}
	hash, err := a.hasher.MakeContext(ctx, pw)
	if err != nil {
		return err
	}
	now := a.now()
	rec := &Record{Username: username, Hash: hash, CreatedAt: now, UpdatedAt: now}
	if err := a.store.Create(ctx, rec); err != nil {
		return err
	}
	a.log.WithField("username", username).Info("credentials: registered")
	return nil
}

// Login verifies pw for username and returns the updated record.
//
// Unknown usernames and wrong passwords both return
// [ErrInvalidCredentials], and both cost one full hash: for an unknown
// username the hasher's dummy hash runs instead of a verification.
//
// On success the failed-attempt counter is reset, the login time recorded,
// and the stored hash replaced when the hasher reports it needs a rehash.
func (a *Authenticator) Login(ctx context.Context, username, pw string) (*Record, error) {
	log := a.log.WithField("username", username)

	rec, err := a.store.Find(ctx, username)
	if errors.Is(err, ErrNotFound) {
		a.hasher.Dummy()
		log.Debug("credentials: login for unknown user")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		log.WithError(err).Warn("credentials: store lookup failed")
		return nil, fmt.Errorf("credentials: find %q: %w", username, err)
	}

	ok, err := a.hasher.CheckContext(ctx, pw, rec.Hash)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("credentials: stored hash unusable")
		}
		return nil, err
	}
	if !ok {
		rec.FailedAttempts++
		rec.UpdatedAt = a.now()
		if err := a.store.Update(ctx, rec); err != nil {
			log.WithError(err).Warn("credentials: recording failed attempt")
		}
		log.WithField("failed_attempts", rec.FailedAttempts).Debug("credentials: wrong password")
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	rec.FailedAttempts = 0
	rec.LastLoginAt = &now
	rec.UpdatedAt = now

	if needs, err := a.hasher.NeedsRehash(rec.Hash); err == nil && needs {
		hash, err := a.hasher.MakeContext(ctx, pw)
		if err != nil {
			return nil, err
		}
		rec.Hash = hash
		log.Info("credentials: rehashed on login")
	}

	if err := a.store.Update(ctx, rec); err != nil {
		log.WithError(err).Warn("credentials: saving login")
		return nil, err
	}
	return rec, nil
}

// ChangePassword verifies oldPW, checks newPW against the policy and stores
// its hash.
func (a *Authenticator) ChangePassword(ctx context.Context, username, oldPW, newPW string) error {
	rec, err := a.Login(ctx, username, oldPW)
	if err != nil {
		return err
	}
	if err := a.policy.Check(newPW); err != nil {
		return fmt.Errorf("%w: %w", ErrWeakPassword, err)
	}
	hash, err := a.hasher.MakeContext(ctx, newPW)
	if err != nil {
		return err
	}
	rec.Hash = hash
	rec.UpdatedAt = a.now()
	if err := a.store.Update(ctx, rec); err != nil {
		return err
	}
	a.log.WithField("username", username).Info("credentials: password changed")
	return nil
}
