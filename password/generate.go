package password

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

const (
	letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	// Punctuation is the set of symbols generated passwords draw from.
	Punctuation = "!#$%&*+-=?"

	genAlphabet = letters + Punctuation + digits

	// acceptBelow is the largest multiple of len(genAlphabet) that fits in
	// a byte.  Bytes at or above it are redrawn so every symbol is equally
	// likely.
	acceptBelow = 256 - 256%len(genAlphabet)

	// MinGenerateLength is the shortest password [Generate] produces; one
	// character for the punctuation symbol and one for the digit.
	MinGenerateLength = 2
)

// Generate returns a random password of length characters drawn uniformly
// from letters, ten punctuation symbols and digits, using crypto/rand.
// Every result contains at least one punctuation symbol and one digit.
func Generate(length int) (string, error) {
	return GenerateFrom(rand.Reader, length)
}

// GenerateFrom is [Generate] with a caller-supplied random source.
//
// Each byte is mapped to a symbol by rejection sampling, and whole candidates
// lacking a punctuation symbol or a digit are discarded and redrawn, so the
// accepted passwords are uniform over all passwords that contain both.
func GenerateFrom(r io.Reader, length int) (string, error) {
	if length < MinGenerateLength {
		return "", fmt.Errorf("%w: %d, need at least %d", ErrInvalidLength, length, MinGenerateLength)
	}

	src := bufio.NewReaderSize(r, 64)
	buf := make([]byte, length)
	defer secure.Wipe(buf)
	for {
		for i := range buf {
			c, err := drawSymbol(src)
			if err != nil {
				return "", err
			}
			buf[i] = c
		}
		pw := string(buf)
		if strings.ContainsAny(pw, Punctuation) && strings.ContainsAny(pw, digits) {
			return pw, nil
		}
	}
}

func drawSymbol(src io.ByteReader) (byte, error) {
	for {
		b, err := src.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEntropySource, err)
		}
		if int(b) < acceptBelow {
			return genAlphabet[int(b)%len(genAlphabet)], nil
		}
	}
}
