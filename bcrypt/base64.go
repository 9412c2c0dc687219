package bcrypt

import (
	"encoding/base64"
	"fmt"
)

// alphabet is the bcrypt base64 alphabet.  It differs from RFC 4648 in both
// symbol set and order.
const alphabet = "./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var bcEncoding = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)

const (
	// encodedSaltLen is the number of base64 characters for SaltLen bytes.
	encodedSaltLen = 22
	// digestLen is the number of ciphertext bytes kept in the crypt string.
	// The last of the 24 ciphertext bytes is dropped for compatibility.
	digestLen = 23
	// encodedDigestLen is the number of base64 characters for digestLen bytes.
	encodedDigestLen = 31
)

// encodeBase64 encodes src without padding.
func encodeBase64(src []byte) string {
	return bcEncoding.EncodeToString(src)
}

// decodeBase64 decodes exactly n bytes from the leading characters of src.
// Characters past those needed for n bytes are not examined.  The trailing
// bits of the last character are ignored, matching the reference decoder,
// which only ever shifts the high bits of that symbol into place.
func decodeBase64(src string, n int) ([]byte, error) {
	need := bcEncoding.EncodedLen(n)
	if len(src) < need {
		return nil, fmt.Errorf("need %d base64 characters, got %d", need, len(src))
	}
	// encoding/base64 silently skips '\r' and '\n'; the bcrypt decoder must
	// reject every byte outside the alphabet.
	for i := 0; i < need; i++ {
		if !inAlphabet(src[i]) {
			return nil, fmt.Errorf("illegal base64 character %q at offset %d", src[i], i)
		}
	}
	dst := make([]byte, n)
	if _, err := bcEncoding.Decode(dst, []byte(src[:need])); err != nil {
		return nil, err
	}
	return dst, nil
}

func inAlphabet(c byte) bool {
	switch {
	case c == '.' || c == '/':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}
