package bcrypt

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Salt is a freshly generated raw salt together with the cost it will be
// used at.  Its String form is the "$2b$" salt string accepted by [NewJob]
// and [Hash].
type Salt struct {
	Raw  [SaltLen]byte
	Cost int
}

// String renders the salt string, clamping Cost into [MinCost, MaxCost].
func (s Salt) String() string { return EncodeSalt(s.Raw, s.Cost) }

// NewSalt draws [SaltLen] bytes from crypto/rand.
func NewSalt(cost int) (Salt, error) {
	return NewSaltFrom(rand.Reader, cost)
}

// NewSaltFrom draws [SaltLen] bytes from r.  A failing or short read is
// reported as [ErrEntropySource]; nothing is retried.
func NewSaltFrom(r io.Reader, cost int) (Salt, error) {
	s := Salt{Cost: clampCost(cost)}
	if _, err := io.ReadFull(r, s.Raw[:]); err != nil {
		return Salt{}, fmt.Errorf("%w: %v", ErrEntropySource, err)
	}
	return s, nil
}

// GenerateSalt returns a new random salt string for cost.
//
//	salt, err := bcrypt.GenerateSalt(12) // "$2b$12$<22 chars>"
func GenerateSalt(cost int) (string, error) {
	s, err := NewSalt(cost)
	if err != nil {
		return "", err
	}
	return s.String(), nil
}
