package bcrypt

import (
	"fmt"

	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

const (
	// MinCost is the smallest accepted cost factor (2^4 = 16 rounds).
	MinCost = 4
	// MaxCost is the largest accepted cost factor (2^31 rounds).
	MaxCost = 31
	// DefaultCost is the cost used by [DummyHash] and by callers that do not
	// choose one.  At cost 12 a hash takes roughly 250 ms on a modern server
	// CPU; raise it as hardware improves.
	DefaultCost = 12

	// SaltLen is the length of a raw bcrypt salt in bytes.
	SaltLen = 16

	// MaxPasswordLen is the number of password bytes that minor version "b"
	// keeps.  Longer passwords are truncated, not rejected.
	MaxPasswordLen = 72

	// HashLen is the length of a complete crypt string.
	HashLen = prefixLen + encodedDigestLen

	// prefixLen is the length of "$2b$12$" plus the encoded salt.
	prefixLen = 7 + encodedSaltLen

	majorVersion = '2'
)

// Minor versions understood by the codec.
const (
	// MinorA is the legacy variant: the key is the whole password followed
	// by a NUL byte.  The length is not reduced modulo 256, so passwords of
	// 255 bytes or more do not reproduce the 8-bit length wraparound of old
	// OpenBSD-derived "2a" implementations.
	MinorA byte = 'a'
	// MinorB truncates the password to [MaxPasswordLen] bytes before the NUL
	// byte is appended.  [EncodeSalt] always emits this minor.
	MinorB byte = 'b'
)

// CryptString is a parsed bcrypt crypt string:
//
//	$2b$12$<22-char salt><31-char digest>
//
// Digest is nil when the parsed text was a bare salt string (no digest).
type CryptString struct {
	Minor  byte
	Cost   int
	Salt   [SaltLen]byte
	Digest []byte
}

// Rounds returns 2^Cost, the number of expansion iterations.
func (c *CryptString) Rounds() uint32 { return 1 << uint(c.Cost) }

// Prefix renders the salt string, "$2<minor>$<cost>$<salt>", without digest.
func (c *CryptString) Prefix() string {
	return encodePrefix(c.Minor, c.Cost, c.Salt[:])
}

// String renders the canonical crypt string.  Without a digest it is the same
// as [CryptString.Prefix].
func (c *CryptString) String() string {
	if c.Digest == nil {
		return c.Prefix()
	}
	return c.Prefix() + encodeBase64(c.Digest)
}

// EncodeSalt renders raw as a "$2b$" salt string.  cost is clamped into
// [MinCost, MaxCost].
func EncodeSalt(raw [SaltLen]byte, cost int) string {
	return encodePrefix(MinorB, clampCost(cost), raw[:])
}

func encodePrefix(minor byte, cost int, salt []byte) string {
	return fmt.Sprintf("$%c%c$%02d$%s", majorVersion, minor, cost, encodeBase64(salt))
}

func clampCost(cost int) int {
	switch {
	case cost < MinCost:
		return MinCost
	case cost > MaxCost:
		return MaxCost
	}
	return cost
}

// Decode parses a crypt string or a bare salt string.
//
// Validation order follows the grammar left to right, so the first problem
// found determines the error:
//
//   - [ErrParse] for a missing "$" or a cost field that is not two digits
//   - [ErrUnsupportedVersion] for a major other than "2" or a minor other
//     than "a" or "b"
//   - [ErrInvalidCost] for a cost outside [MinCost, MaxCost]
//   - [ErrInvalidSalt] for fewer than 22 salt characters or a character
//     outside the alphabet
//
// When at least 31 further characters follow the salt they are decoded as
// the digest.  Anything after the digest is ignored.
func Decode(s string) (*CryptString, error) {
	if len(s) == 0 || s[0] != '$' {
		return nil, fmt.Errorf("%w: must begin with '$'", ErrParse)
	}
	if len(s) < 3 {
		return nil, fmt.Errorf("%w: truncated version field", ErrParse)
	}
	if s[1] != majorVersion {
		return nil, fmt.Errorf("%w: major version %q", ErrUnsupportedVersion, s[1])
	}
	minor := s[2]
	if minor != MinorA && minor != MinorB {
		return nil, fmt.Errorf("%w: minor version %q", ErrUnsupportedVersion, minor)
	}
	if len(s) < 4 || s[3] != '$' {
		return nil, fmt.Errorf("%w: missing '$' after version", ErrParse)
	}

	rest := s[4:]
	if len(rest) < 3 || !isDigit(rest[0]) || !isDigit(rest[1]) || rest[2] != '$' {
		return nil, fmt.Errorf("%w: cost must be two digits followed by '$'", ErrParse)
	}
	cost := int(rest[0]-'0')*10 + int(rest[1]-'0')
	if cost < MinCost || cost > MaxCost {
		return nil, fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidCost, cost, MinCost, MaxCost)
	}

	rest = rest[3:]
	if len(rest) < encodedSaltLen {
		return nil, fmt.Errorf("%w: need %d characters, got %d", ErrInvalidSalt, encodedSaltLen, len(rest))
	}
	raw, err := decodeBase64(rest, SaltLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSalt, err)
	}

	c := &CryptString{Minor: minor, Cost: cost}
	copy(c.Salt[:], raw)
	secure.Wipe(raw)

	if len(rest) >= encodedSaltLen+encodedDigestLen {
		digest, err := decodeBase64(rest[encodedSaltLen:], digestLen)
		if err != nil {
			secure.Wipe(c.Salt[:])
			return nil, fmt.Errorf("%w: digest: %v", ErrInvalidSalt, err)
		}
		c.Digest = digest
	}
	return c, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
