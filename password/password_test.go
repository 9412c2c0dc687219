package password_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-sliced-bcrypt/password"
)

func TestPolicy_Check(t *testing.T) {
	p := password.DefaultPolicy()
	cases := []struct {
		pw   string
		want error
	}{
		{"", password.ErrTooShort},
		{"x7!", password.ErrTooShort},
		{"abcdefghijk!", password.ErrNoDigit},
		{"abcdefghij1", password.ErrNoPunct},
		{"correct-horse-7", nil},
		{"ünïcødé-pw-9", nil},
	}
	for _, tc := range cases {
		t.Run(tc.pw, func(t *testing.T) {
			err := p.Check(tc.pw)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPolicy_CheckCountsRunes(t *testing.T) {
	p := password.Policy{MinLength: 4}
	// Four runes, eight bytes.
	assert.NoError(t, p.Check("éééé"))
	assert.ErrorIs(t, p.Check("ééé"), password.ErrTooShort)
}

func TestPolicy_CheckRejectsCommon(t *testing.T) {
	p := password.Policy{MinLength: 6, RejectCommon: true}
	assert.ErrorIs(t, p.Check("password"), password.ErrCommonPassword)
	assert.ErrorIs(t, p.Check("PassWord"), password.ErrCommonPassword)
	assert.NoError(t, p.Check("not-on-any-list"))

	p.RejectCommon = false
	assert.NoError(t, p.Check("password"))
}

func TestPolicy_CheckOrder(t *testing.T) {
	// Short, digitless, punctless and common: length is reported first.
	p := password.Policy{MinLength: 20, RequireDigit: true, RequirePunct: true, RejectCommon: true}
	assert.ErrorIs(t, p.Check("letmein"), password.ErrTooShort)

	p.MinLength = 1
	assert.ErrorIs(t, p.Check("letmein"), password.ErrNoDigit)

	p.RequireDigit = false
	assert.ErrorIs(t, p.Check("letmein"), password.ErrNoPunct)

	p.RequirePunct = false
	assert.ErrorIs(t, p.Check("letmein"), password.ErrCommonPassword)
}

func TestPolicy_ReasonsAreReadable(t *testing.T) {
	err := password.DefaultPolicy().Check("short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too short")
	assert.Equal(t, "password must contain a digit", password.ErrNoDigit.Error())
}

func TestIsCommon(t *testing.T) {
	assert.True(t, password.IsCommon("123456"))
	assert.True(t, password.IsCommon("QWERTY"))
	assert.False(t, password.IsCommon(""))
	assert.False(t, password.IsCommon("z8#Lq!r2"))
	assert.GreaterOrEqual(t, password.CommonCount(), 100)
}

func TestIsCommon_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, password.IsCommon("letmein"))
		}()
	}
	wg.Wait()
}

func TestGenerate(t *testing.T) {
	for _, n := range []int{2, 3, 8, 16, 64} {
		pw, err := password.Generate(n)
		require.NoError(t, err)
		assert.Len(t, pw, n)
		assert.True(t, strings.ContainsAny(pw, password.Punctuation), pw)
		assert.True(t, strings.ContainsAny(pw, "0123456789"), pw)
		for _, r := range pw {
			assert.True(t, isGenSymbol(r), "unexpected symbol %q in %q", r, pw)
		}
	}
}

func TestGenerate_PassesDefaultPolicy(t *testing.T) {
	pw, err := password.Generate(16)
	require.NoError(t, err)
	assert.NoError(t, password.DefaultPolicy().Check(pw))
}

func TestGenerate_InvalidLength(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		_, err := password.Generate(n)
		assert.ErrorIs(t, err, password.ErrInvalidLength)
	}
}

func TestGenerateFrom_Deterministic(t *testing.T) {
	// 0,0 → "aa" lacks punctuation and digit, so it is redrawn.
	// 216 is outside the accepted range and skipped.
	// 52 → '!' and 62 → '0'.
	src := bytes.NewReader([]byte{0, 0, 216, 52, 62})
	pw, err := password.GenerateFrom(src, 2)
	require.NoError(t, err)
	assert.Equal(t, "!0", pw)
}

func TestGenerateFrom_Wraps(t *testing.T) {
	// 72 maps back to the first symbol; 72+52 to the first punctuation symbol.
	src := bytes.NewReader([]byte{72 + 52, 72 + 62 + 9})
	pw, err := password.GenerateFrom(src, 2)
	require.NoError(t, err)
	assert.Equal(t, "!9", pw)
}

func TestGenerateFrom_EntropyFailure(t *testing.T) {
	_, err := password.GenerateFrom(iotest.ErrReader(errors.New("no entropy")), 8)
	assert.ErrorIs(t, err, password.ErrEntropySource)

	_, err = password.GenerateFrom(bytes.NewReader([]byte{1, 2, 3}), 8)
	assert.ErrorIs(t, err, password.ErrEntropySource, "exhausted source")
}

func TestGenerate_RoughlyUniform(t *testing.T) {
	counts := make(map[rune]int)
	const n, length = 1000, 20
	for i := 0; i < n; i++ {
		pw, err := password.Generate(length)
		require.NoError(t, err)
		for _, r := range pw {
			counts[r]++
		}
	}
	// 72 symbols over 20000 draws: about 278 each.
	assert.Len(t, counts, 72)
	for r, c := range counts {
		assert.Greater(t, c, 120, "symbol %q underrepresented", r)
		assert.Less(t, c, 500, "symbol %q overrepresented", r)
	}
}

func isGenSymbol(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') || strings.ContainsRune(password.Punctuation, r)
}
