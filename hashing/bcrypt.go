package hashing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hasbyte1/go-sliced-bcrypt/bcrypt"
	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

const (
	// DefaultBcryptCost is the recommended work factor for bcrypt.
	// At cost 12, hashing takes approximately 250 ms on a modern server CPU,
	// which satisfies OWASP ASVS Level 1 (≥ 10) and Level 2 (≥ 12).
	//
	// Increase this value as hardware improves, or let [Calibrate] pick one
	// for the deployment host.
	DefaultBcryptCost = bcrypt.DefaultCost
)

// BcryptOptions configures a [BcryptHasher].
type BcryptOptions struct {
	// Cost is the bcrypt work factor (logarithmic).
	// Valid range: [bcrypt.MinCost (4), bcrypt.MaxCost (31)].
	// Default: [DefaultBcryptCost] (12).
	Cost int

	// Budget is the time a single resumption of the underlying job aims to
	// stay within.  Zero selects bcrypt.DefaultBudget.
	Budget time.Duration

	// InitialBatch is the iteration count of each job's first batch.  Zero
	// selects bcrypt.DefaultInitialBatch.
	InitialBatch int

	// Logger receives job lifecycle events.  Nil selects logrus' standard
	// logger.
	Logger logrus.FieldLogger
}

// DefaultBcryptOptions returns BcryptOptions with [DefaultBcryptCost] and the
// engine's default slicing parameters.
func DefaultBcryptOptions() BcryptOptions {
	return BcryptOptions{
		Cost:         DefaultBcryptCost,
		Budget:       bcrypt.DefaultBudget,
		InitialBatch: bcrypt.DefaultInitialBatch,
	}
}

// BcryptHasher hashes passwords using the time-sliced bcrypt engine.
//
// Hashes are emitted with minor version "b".  Check also accepts "a" and the
// "y" variant written by PHP and Laravel, which is the same algorithm as "b".
//
// # Thread safety
//
// BcryptHasher is immutable after construction and safe for concurrent use.
// Every call runs its own [bcrypt.Job].
type BcryptHasher struct {
	cost    int
	jobOpts []bcrypt.Option
}

// NewBcryptHasher constructs a BcryptHasher with the provided options.
// Returns [ErrInvalidOption] if Cost is outside [bcrypt.MinCost, bcrypt.MaxCost]
// or if Budget or InitialBatch is negative.
func NewBcryptHasher(opts BcryptOptions) (*BcryptHasher, error) {
	if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d must be in [%d, %d]",
			ErrInvalidOption, opts.Cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if opts.Budget < 0 {
		return nil, fmt.Errorf("%w: bcrypt budget %v must not be negative", ErrInvalidOption, opts.Budget)
	}
	if opts.InitialBatch < 0 {
		return nil, fmt.Errorf("%w: bcrypt initial batch %d must not be negative", ErrInvalidOption, opts.InitialBatch)
	}
	return &BcryptHasher{
		cost: opts.Cost,
		jobOpts: []bcrypt.Option{
			bcrypt.WithBudget(opts.Budget),
			bcrypt.WithInitialBatch(opts.InitialBatch),
			bcrypt.WithLogger(opts.Logger),
		},
	}, nil
}

// Driver returns [DriverBcrypt].
func (h *BcryptHasher) Driver() DriverName { return DriverBcrypt }

// Cost returns the configured bcrypt work factor.
func (h *BcryptHasher) Cost() int { return h.cost }

// Make hashes password with bcrypt and returns the Modular Crypt Format string
// (e.g., "$2b$12$...").  A fresh 128-bit random salt is generated internally.
//
// Security note: bcrypt truncates passwords longer than 72 bytes.
func (h *BcryptHasher) Make(password string) (string, error) {
	return h.MakeContext(context.Background(), password)
}

// MakeContext is [BcryptHasher.Make] with cancellation between slices.
func (h *BcryptHasher) MakeContext(ctx context.Context, password string) (string, error) {
	salt, err := bcrypt.GenerateSalt(h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing: bcrypt: failed to generate salt: %w", err)
	}
	pw := []byte(password)
	defer secure.Wipe(pw)
	hash, err := bcrypt.HashContext(ctx, pw, salt, h.jobOpts...)
	if err != nil {
		return "", fmt.Errorf("hashing: bcrypt: failed to hash password: %w", err)
	}
	return hash, nil
}

// Begin starts a resumable hash of password with a fresh salt and returns
// the job without running it.  The caller drives it with Resume and must
// Dispose it if abandoned.
func (h *BcryptHasher) Begin(password string) (*bcrypt.Job, error) {
	salt, err := bcrypt.GenerateSalt(h.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing: bcrypt: failed to generate salt: %w", err)
	}
	pw := []byte(password)
	defer secure.Wipe(pw)
	return bcrypt.NewJob(pw, salt, h.jobOpts...)
}

// Check verifies that password matches the bcrypt-encoded hash.
// Returns (false, nil) on mismatch.
func (h *BcryptHasher) Check(password, hash string) (bool, error) {
	return h.CheckContext(context.Background(), password, hash)
}

// CheckContext is [BcryptHasher.Check] with cancellation between slices.
func (h *BcryptHasher) CheckContext(ctx context.Context, password, hash string) (bool, error) {
	canonical, err := h.canonical(hash)
	if err != nil {
		return false, err
	}
	pw := []byte(password)
	defer secure.Wipe(pw)
	ok, err := bcrypt.VerifyContext(ctx, pw, canonical, h.jobOpts...)
	if err != nil {
		if ctx.Err() != nil {
			return false, err
		}
		return false, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return ok, nil
}

// NeedsRehash returns true if the work factor encoded in hash differs from
// the hasher's configured cost, or if the hash uses the legacy minor
// version "a".
func (h *BcryptHasher) NeedsRehash(hash string) (bool, error) {
	c, err := h.parse(hash)
	if err != nil {
		return false, err
	}
	return c.Cost != h.cost || hash[2] == bcrypt.MinorA, nil
}

// Info extracts the work factor and version from a bcrypt hash string.
//
// Returned [HashInfo].Params:
//   - "cost"    → int
//   - "minor"   → string
//   - "version" → string
func (h *BcryptHasher) Info(hash string) (HashInfo, error) {
	c, err := h.parse(hash)
	if err != nil {
		return HashInfo{}, err
	}
	return HashInfo{
		Driver: DriverBcrypt,
		Params: map[string]any{
			"cost":    c.Cost,
			"minor":   hash[2:3],
			"version": hash[1:3],
		},
	}, nil
}

// Dummy runs a full hash at the hasher's cost and discards it.  Call it
// when a login names an unknown account so the response takes as long as
// a real Check.
func (h *BcryptHasher) Dummy() {
	bcrypt.DummyHashCost(h.cost, h.jobOpts...)
}

func (h *BcryptHasher) parse(hash string) (*bcrypt.CryptString, error) {
	canonical, err := h.canonical(hash)
	if err != nil {
		return nil, err
	}
	c, err := bcrypt.Decode(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHash, err)
	}
	return c, nil
}

// canonical rewrites the "$2y$" prefix to "$2b$"; both name the same
// algorithm.  Hashes from other algorithms yield ErrAlgorithmMismatch.
func (h *BcryptHasher) canonical(hash string) (string, error) {
	if !h.looksLikeBcrypt(hash) {
		return "", fmt.Errorf("%w: hash does not appear to be bcrypt", ErrAlgorithmMismatch)
	}
	if strings.HasPrefix(hash, "$2y$") {
		return "$2b$" + hash[4:], nil
	}
	return hash, nil
}

// looksLikeBcrypt returns true if hash has a recognised bcrypt prefix.
func (h *BcryptHasher) looksLikeBcrypt(hash string) bool {
	d, ok := DetectDriver(hash)
	return ok && d == DriverBcrypt
}
