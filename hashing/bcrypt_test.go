package hashing_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	xbcrypt "golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-sliced-bcrypt/bcrypt"
	"github.com/hasbyte1/go-sliced-bcrypt/hashing"
)

// testBcryptCost is the minimum bcrypt work factor.  Used in unit tests only
// so the test suite runs quickly.  Production code should use DefaultBcryptCost.
const testBcryptCost = bcrypt.MinCost // 4

func newTestBcryptHasher(t *testing.T) *hashing.BcryptHasher {
	t.Helper()
	h, err := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: testBcryptCost})
	if err != nil {
		t.Fatalf("NewBcryptHasher: %v", err)
	}
	return h
}

// ──────────────────────────────────────────────────────────────────────────────
// Constructor
// ──────────────────────────────────────────────────────────────────────────────

func TestNewBcryptHasher_Valid(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, 10, 12, bcrypt.MaxCost} {
		h, err := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: cost})
		if err != nil {
			t.Errorf("cost %d: unexpected error %v", cost, err)
		}
		if h == nil {
			t.Errorf("cost %d: expected non-nil hasher", cost)
		}
		if h != nil && h.Cost() != cost {
			t.Errorf("cost %d: got %d", cost, h.Cost())
		}
	}
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	cases := []int{bcrypt.MinCost - 1, 0, -1, bcrypt.MaxCost + 1, 99}
	for _, cost := range cases {
		_, err := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: cost})
		if !errors.Is(err, hashing.ErrInvalidOption) {
			t.Errorf("cost %d: expected ErrInvalidOption, got %v", cost, err)
		}
	}
}

func TestNewBcryptHasher_InvalidSlicing(t *testing.T) {
	cases := []hashing.BcryptOptions{
		{Cost: testBcryptCost, Budget: -time.Millisecond},
		{Cost: testBcryptCost, InitialBatch: -1},
	}
	for _, opts := range cases {
		_, err := hashing.NewBcryptHasher(opts)
		if !errors.Is(err, hashing.ErrInvalidOption) {
			t.Errorf("%+v: expected ErrInvalidOption, got %v", opts, err)
		}
	}
}

func TestDefaultBcryptOptions(t *testing.T) {
	opts := hashing.DefaultBcryptOptions()
	if opts.Cost != hashing.DefaultBcryptCost {
		t.Errorf("got cost %d, want %d", opts.Cost, hashing.DefaultBcryptCost)
	}
	if opts.Budget != bcrypt.DefaultBudget {
		t.Errorf("got budget %v, want %v", opts.Budget, bcrypt.DefaultBudget)
	}
	if opts.InitialBatch != bcrypt.DefaultInitialBatch {
		t.Errorf("got initial batch %d, want %d", opts.InitialBatch, bcrypt.DefaultInitialBatch)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Make
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_Make_ReturnsHash(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, err := h.Make("password123")
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	if !strings.HasPrefix(hash, "$2b$04$") {
		t.Fatalf("hash does not look like bcrypt: %q", hash)
	}
	if len(hash) != bcrypt.HashLen {
		t.Fatalf("hash length = %d, want %d", len(hash), bcrypt.HashLen)
	}
}

func TestBcryptHasher_Make_ProducesUniqueHashes(t *testing.T) {
	h := newTestBcryptHasher(t)
	h1, _ := h.Make("same-password")
	h2, _ := h.Make("same-password")
	if h1 == h2 {
		t.Error("two Make calls with the same password must produce different hashes (different salts)")
	}
}

func TestBcryptHasher_Make_EmptyPassword(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, err := h.Make("")
	if err != nil {
		t.Fatalf("Make empty password: %v", err)
	}
	ok, err := h.Check("", hash)
	if err != nil || !ok {
		t.Fatal("Check empty password failed")
	}
}

func TestBcryptHasher_Make_ReadableByXCrypto(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("interop")
	if err := xbcrypt.CompareHashAndPassword([]byte(hash), []byte("interop")); err != nil {
		t.Errorf("x/crypto rejects our hash: %v", err)
	}
}

func TestBcryptHasher_MakeContext_Cancelled(t *testing.T) {
	h := newTestBcryptHasher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.MakeContext(ctx, "pw")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Begin
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_Begin(t *testing.T) {
	h := newTestBcryptHasher(t)
	job, err := h.Begin("stepwise")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer job.Dispose()

	if job.State() != bcrypt.StateCreated {
		t.Fatalf("state = %v, want created", job.State())
	}
	if job.Cost() != testBcryptCost {
		t.Fatalf("cost = %d, want %d", job.Cost(), testBcryptCost)
	}
	for done := false; !done; {
		if done, err = job.Resume(); err != nil {
			t.Fatalf("Resume: %v", err)
		}
	}
	hash, _ := job.Result()
	ok, err := h.Check("stepwise", hash)
	if err != nil || !ok {
		t.Errorf("Check(job result) = %v, %v", ok, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Check
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_Check_CorrectPassword(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("hunter2")
	ok, err := h.Check("hunter2", hash)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !ok {
		t.Error("Check returned false for correct password")
	}
}

func TestBcryptHasher_Check_WrongPassword(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("hunter2")
	ok, err := h.Check("wrong-password", hash)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Error("Check returned true for wrong password")
	}
}

func TestBcryptHasher_Check_InvalidHash(t *testing.T) {
	h := newTestBcryptHasher(t)
	_, err := h.Check("password", "not-a-hash")
	if !errors.Is(err, hashing.ErrAlgorithmMismatch) {
		t.Errorf("expected ErrAlgorithmMismatch, got %v", err)
	}
}

func TestBcryptHasher_Check_Argon2HashReturnsAlgorithmMismatch(t *testing.T) {
	h := newTestBcryptHasher(t)
	argon2Hash := "$argon2id$v=19$m=65536,t=3,p=2$abc$def"
	_, err := h.Check("password", argon2Hash)
	if !errors.Is(err, hashing.ErrAlgorithmMismatch) {
		t.Errorf("expected ErrAlgorithmMismatch for argon2 hash, got %v", err)
	}
}

func TestBcryptHasher_Check_MalformedBcrypt(t *testing.T) {
	h := newTestBcryptHasher(t)
	cases := map[string]error{
		"$2b$03$DCq7YPn5Rq63x1Lad4cll.TV4S6ytwfsfvkgY8jIucDrjc8deX1s.": bcrypt.ErrInvalidCost,
		"$2b$04$DCq7YPn5Rq63x1La":                                      bcrypt.ErrInvalidSalt,
		"$2b$04$DCq7YPn5Rq63x1Lad4cll.":                                bcrypt.ErrParse,
	}
	for hash, want := range cases {
		_, err := h.Check("pw", hash)
		if !errors.Is(err, hashing.ErrInvalidHash) {
			t.Errorf("%q: expected ErrInvalidHash, got %v", hash, err)
		}
		if !errors.Is(err, want) {
			t.Errorf("%q: expected %v, got %v", hash, want, err)
		}
	}
}

func TestBcryptHasher_Check_LegacyPrefixes(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("laravel")

	// PHP's password_hash writes $2y$ for the same algorithm.
	php := "$2y$" + strings.TrimPrefix(hash, "$2b$")
	ok, err := h.Check("laravel", php)
	if err != nil || !ok {
		t.Errorf("Check($2y$) = %v, %v", ok, err)
	}

	legacy, err := xbcrypt.GenerateFromPassword([]byte("laravel"), testBcryptCost)
	if err != nil {
		t.Fatalf("x/crypto: %v", err)
	}
	ok, err = h.Check("laravel", string(legacy))
	if err != nil || !ok {
		t.Errorf("Check($2a$) = %v, %v", ok, err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// NeedsRehash
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_NeedsRehash_SameCost(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("pw")
	needs, err := h.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if needs {
		t.Error("NeedsRehash should be false when costs match")
	}

	needs, _ = h.NeedsRehash("$2y$" + hash[4:])
	if needs {
		t.Error("NeedsRehash should be false for $2y$ at the same cost")
	}
}

func TestBcryptHasher_NeedsRehash_DifferentCost(t *testing.T) {
	low, _ := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: testBcryptCost})
	high, _ := hashing.NewBcryptHasher(hashing.BcryptOptions{Cost: testBcryptCost + 1})

	// Hash with low cost, check against high-cost hasher.
	hash, _ := low.Make("pw")
	needs, err := high.NeedsRehash(hash)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if !needs {
		t.Error("NeedsRehash should be true when stored cost differs from configured cost")
	}
}

func TestBcryptHasher_NeedsRehash_MinorA(t *testing.T) {
	h := newTestBcryptHasher(t)
	needs, err := h.NeedsRehash("$2a$04$DCq7YPn5Rq63x1Lad4cll.TV4S6ytwfsfvkgY8jIucDrjc8deX1s.")
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if !needs {
		t.Error("NeedsRehash should be true for minor version a")
	}
}

func TestBcryptHasher_NeedsRehash_InvalidHash(t *testing.T) {
	h := newTestBcryptHasher(t)
	_, err := h.NeedsRehash("not-a-hash")
	if !errors.Is(err, hashing.ErrAlgorithmMismatch) {
		t.Errorf("expected ErrAlgorithmMismatch, got %v", err)
	}
	_, err = h.NeedsRehash("$2b$99$DCq7YPn5Rq63x1Lad4cll.")
	if !errors.Is(err, hashing.ErrInvalidHash) {
		t.Errorf("expected ErrInvalidHash, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Info
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_Info(t *testing.T) {
	h := newTestBcryptHasher(t)
	hash, _ := h.Make("pw")
	info, err := h.Info(hash)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Driver != hashing.DriverBcrypt {
		t.Errorf("Driver = %q, want %q", info.Driver, hashing.DriverBcrypt)
	}
	cost, ok := info.Params["cost"].(int)
	if !ok {
		t.Fatalf("Params[\"cost\"] is not int: %T", info.Params["cost"])
	}
	if cost != testBcryptCost {
		t.Errorf("cost = %d, want %d", cost, testBcryptCost)
	}
	if info.Params["minor"] != "b" || info.Params["version"] != "2b" {
		t.Errorf("minor/version = %v/%v, want b/2b", info.Params["minor"], info.Params["version"])
	}
}

func TestBcryptHasher_Info_InvalidHash(t *testing.T) {
	h := newTestBcryptHasher(t)
	_, err := h.Info("garbage")
	if !errors.Is(err, hashing.ErrAlgorithmMismatch) {
		t.Errorf("expected ErrAlgorithmMismatch, got %v", err)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Driver
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_Driver(t *testing.T) {
	h := newTestBcryptHasher(t)
	if h.Driver() != hashing.DriverBcrypt {
		t.Errorf("got %q, want %q", h.Driver(), hashing.DriverBcrypt)
	}
}

func TestBcryptHasher_SatisfiesHasherInterface(t *testing.T) {
	h := newTestBcryptHasher(t)
	var _ hashing.Hasher = h
}

func TestBcryptHasher_Dummy(t *testing.T) {
	h := newTestBcryptHasher(t)
	h.Dummy()
}

func TestDetectDriver(t *testing.T) {
	cases := map[string]bool{
		"$2a$04$x":                   true,
		"$2b$04$x":                   true,
		"$2y$04$x":                   true,
		"$2x$04$x":                   false,
		"$argon2id$v=19$m=1,t=1,p=1": false,
		"":                           false,
	}
	for hash, want := range cases {
		d, ok := hashing.DetectDriver(hash)
		if ok != want {
			t.Errorf("DetectDriver(%q) ok = %v, want %v", hash, ok, want)
		}
		if ok && d != hashing.DriverBcrypt {
			t.Errorf("DetectDriver(%q) = %q", hash, d)
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrency
// ──────────────────────────────────────────────────────────────────────────────

func TestBcryptHasher_ConcurrentMakeCheck(t *testing.T) {
	h := newTestBcryptHasher(t)
	const goroutines = 20
	var wg sync.WaitGroup
	wg.Add(goroutines)
	errs := make(chan error, goroutines*2)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			hash, err := h.Make("concurrent-pw")
			if err != nil {
				errs <- err
				return
			}
			ok, err := h.Check("concurrent-pw", hash)
			if err != nil {
				errs <- err
				return
			}
			if !ok {
				errs <- errors.New("Check returned false for correct password")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
