package bcrypt

import (
	"encoding/binary"

	"golang.org/x/crypto/blowfish"

	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

// The Blowfish primitive comes from golang.org/x/crypto/blowfish:
//
//	blowfish.NewSaltedCipher  initial state + key/salt expansion
//	blowfish.ExpandKey        zero-salt expansion
//	(*blowfish.Cipher).Encrypt ECB encryption of one 8-byte block
//
// Everything below only sequences those calls.

const (
	// magicText is encrypted 64 times with the expanded state.
	magicText = "OrpheanBeholderScryDoubt"

	ciphertextWords = 6
	ciphertextLen   = 4 * ciphertextWords
	finalRounds     = 64
)

// setupCipher returns a fresh cipher state seeded with both key and salt.
func setupCipher(key, salt []byte) (*blowfish.Cipher, error) {
	return blowfish.NewSaltedCipher(key, salt)
}

// expandIteration performs one bcrypt iteration: a zero-salt expansion with
// the key, then one with the salt.
func expandIteration(c *blowfish.Cipher, key, salt []byte) {
	blowfish.ExpandKey(key, c)
	blowfish.ExpandKey(salt, c)
}

// encryptMagic encrypts magicText finalRounds times under c and stores the
// resulting words big-endian in out.
func encryptMagic(c *blowfish.Cipher, out *[ciphertextLen]byte) {
	var (
		cdata [ciphertextWords]uint32
		block [8]byte
		pos   int
	)
	for i := range cdata {
		cdata[i] = streamToWord([]byte(magicText), &pos)
	}

	for k := 0; k < finalRounds; k++ {
		for i := 0; i < ciphertextWords; i += 2 {
			binary.BigEndian.PutUint32(block[0:], cdata[i])
			binary.BigEndian.PutUint32(block[4:], cdata[i+1])
			c.Encrypt(block[:], block[:])
			cdata[i] = binary.BigEndian.Uint32(block[0:])
			cdata[i+1] = binary.BigEndian.Uint32(block[4:])
		}
	}

	for i, w := range cdata {
		binary.BigEndian.PutUint32(out[4*i:], w)
	}
	secure.WipeWords(cdata[:])
	secure.Wipe(block[:])
}

// streamToWord packs the next four bytes of data, cycling back to the start
// when the end is reached, into a big-endian word.
func streamToWord(data []byte, pos *int) uint32 {
	var w uint32
	j := *pos
	for i := 0; i < 4; i++ {
		if j >= len(data) {
			j = 0
		}
		w = w<<8 | uint32(data[j])
		j++
	}
	*pos = j
	return w
}

// wipeCipher zeroes a cipher state.  blowfish.Cipher holds only fixed-size
// uint32 arrays, which is what secure.WipeValue requires.
func wipeCipher(c *blowfish.Cipher) {
	secure.WipeValue(c)
}
