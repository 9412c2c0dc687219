package password

import "errors"

// Reasons returned by [Policy.Check].  Their Error text is suitable for
// showing to the user.
var (
	// ErrTooShort is returned when a password has fewer characters than
	// [Policy.MinLength].
	ErrTooShort = errors.New("password is too short")

	// ErrNoDigit is returned when [Policy.RequireDigit] is set and the
	// password contains no decimal digit.
	ErrNoDigit = errors.New("password must contain a digit")

	// ErrNoPunct is returned when [Policy.RequirePunct] is set and the
	// password contains no punctuation or symbol character.
	ErrNoPunct = errors.New("password must contain a punctuation character")

	// ErrCommonPassword is returned when [Policy.RejectCommon] is set and the
	// password is on the common-password list.
	ErrCommonPassword = errors.New("password is too common")
)

var (
	// ErrInvalidLength is returned by [Generate] for lengths below
	// [MinGenerateLength].
	ErrInvalidLength = errors.New("password: invalid generated length")

	// ErrEntropySource is returned by [Generate] when the random source
	// fails.
	ErrEntropySource = errors.New("password: entropy source failed")
)
