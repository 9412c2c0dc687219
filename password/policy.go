// Package password holds the collaborators that sit next to hashing in a
// login flow: a strength policy, the common-password list it consults, and
// a random password generator.
//
// Nothing here touches hash internals; the policy judges plaintext before it
// is hashed.
package password

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Policy describes the minimum strength a new password must have.
type Policy struct {
	// MinLength is the minimum number of characters (runes, not bytes).
	MinLength int
	// RequireDigit demands at least one decimal digit.
	RequireDigit bool
	// RequirePunct demands at least one punctuation or symbol character.
	RequirePunct bool
	// RejectCommon rejects passwords on the common-password list.
	RejectCommon bool
}

// DefaultPolicy returns the policy used when none is configured: at least 10
// characters with a digit and a punctuation character, not a common
// password.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:    10,
		RequireDigit: true,
		RequirePunct: true,
		RejectCommon: true,
	}
}

// Check returns nil when pw satisfies p, or the first unmet requirement, in
// the order length, digit, punctuation, commonness.  The returned error wraps
// one of [ErrTooShort], [ErrNoDigit], [ErrNoPunct] or [ErrCommonPassword].
func (p Policy) Check(pw string) error {
	if n := utf8.RuneCountInString(pw); n < p.MinLength {
		return fmt.Errorf("%w: %d characters, need at least %d", ErrTooShort, n, p.MinLength)
	}

	var digit, punct bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			punct = true
		}
	}
	if p.RequireDigit && !digit {
		return ErrNoDigit
	}
	if p.RequirePunct && !punct {
		return ErrNoPunct
	}
	if p.RejectCommon && IsCommon(pw) {
		return ErrCommonPassword
	}
	return nil
}
