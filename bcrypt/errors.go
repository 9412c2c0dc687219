package bcrypt

import "errors"

// Sentinel errors returned by the codec, the salt generator and the engine.
//
// They are always wrapped with detail, so compare with [errors.Is]:
//
//	_, err := bcrypt.NewJob(pw, salt)
//	if errors.Is(err, bcrypt.ErrInvalidCost) {
//	    // cost field outside [4, 31]
//	}
var (
	// ErrParse is returned when a crypt string does not follow the
	// $2<minor>$<cost>$<salt> grammar: a missing "$" delimiter, a cost field
	// that is not two ASCII digits, and similar structural problems.
	ErrParse = errors.New("bcrypt: malformed crypt string")

	// ErrUnsupportedVersion is returned when the major version is not "2" or
	// the minor version is not one of "a" or "b".
	ErrUnsupportedVersion = errors.New("bcrypt: unsupported version")

	// ErrInvalidCost is returned when a cost factor lies outside
	// [MinCost, MaxCost].
	ErrInvalidCost = errors.New("bcrypt: invalid cost")

	// ErrInvalidSalt is returned when the salt (or digest) portion is too
	// short or contains a character outside the bcrypt base64 alphabet.
	ErrInvalidSalt = errors.New("bcrypt: invalid salt")

	// ErrEntropySource is returned when the random source fails while
	// generating a salt.  It is never retried internally.
	ErrEntropySource = errors.New("bcrypt: entropy source failure")

	// ErrJobDisposed is returned by Resume on a job that was disposed before
	// it finished.
	ErrJobDisposed = errors.New("bcrypt: job disposed")
)
