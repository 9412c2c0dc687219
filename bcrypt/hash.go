package bcrypt

import (
	"context"
	"crypto/subtle"
	"fmt"
	"runtime"

	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

// Hash computes the crypt string of password under salt, resuming the job
// until it finishes.  It blocks for the whole computation; use [NewJob] for
// the non-blocking form.
//
//	salt, _ := bcrypt.GenerateSalt(12)
//	hash, err := bcrypt.Hash([]byte("hard2guess"), salt)
func Hash(password []byte, salt string, opts ...Option) (string, error) {
	return HashContext(context.Background(), password, salt, opts...)
}

// HashContext is [Hash] with cancellation.  Between resumptions it yields
// the processor and checks ctx; on cancellation the job is disposed and
// ctx.Err() returned.
func HashContext(ctx context.Context, password []byte, salt string, opts ...Option) (string, error) {
	j, err := NewJob(password, salt, opts...)
	if err != nil {
		return "", err
	}
	defer j.Dispose()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		done, err := j.Resume()
		if err != nil {
			return "", err
		}
		if done {
			h, _ := j.Result()
			return h, nil
		}
		runtime.Gosched()
	}
}

// Verify reports whether password hashes to crypt.  The minor version, cost
// and salt are taken from crypt itself, and the digests are compared in
// constant time.
//
// A mismatch is (false, nil).  A malformed crypt string returns the codec
// error; a crypt string without a digest returns [ErrParse].
func Verify(password []byte, crypt string, opts ...Option) (bool, error) {
	return VerifyContext(context.Background(), password, crypt, opts...)
}

// VerifyContext is [Verify] with cancellation.
func VerifyContext(ctx context.Context, password []byte, crypt string, opts ...Option) (bool, error) {
	stored, err := Decode(crypt)
	if err != nil {
		return false, err
	}
	defer wipeCryptString(stored)
	if stored.Digest == nil {
		return false, fmt.Errorf("%w: crypt string has no digest", ErrParse)
	}

	computed, err := HashContext(ctx, password, stored.Prefix(), opts...)
	if err != nil {
		return false, err
	}
	digest, err := decodeBase64(computed[prefixLen:], digestLen)
	if err != nil {
		return false, fmt.Errorf("bcrypt: re-decoding computed digest: %w", err)
	}
	defer secure.Wipe(digest)
	return subtle.ConstantTimeCompare(digest, stored.Digest) == 1, nil
}

func wipeCryptString(c *CryptString) {
	secure.Wipe(c.Salt[:])
	secure.Wipe(c.Digest)
}

// The fixed inputs of DummyHash.  They are placeholders with no meaning
// beyond being constant.
const dummyPassword = "bcrypt-timing-equalizer"

var dummySalt = [SaltLen]byte([]byte("dummy-salt-value"))

// DummyHash performs a full hash at [DefaultCost] and discards the result.
//
// Call it on the "no such user" path of a login flow so that the response
// takes as long as a real verification would; otherwise response timing
// reveals which accounts exist.
func DummyHash(opts ...Option) {
	DummyHashCost(DefaultCost, opts...)
}

// DummyHashCost is [DummyHash] at a caller-chosen cost, which should match
// the cost of the stored hashes it stands in for.
func DummyHashCost(cost int, opts ...Option) {
	_, _ = Hash([]byte(dummyPassword), EncodeSalt(dummySalt, cost), opts...)
}
