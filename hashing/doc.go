// Package hashing provides a driver-style password hashing facade over the
// time-sliced bcrypt engine in package bcrypt.
//
// # Architecture
//
// The central abstraction is the [Hasher] interface.  [BcryptHasher]
// implements it on top of [bcrypt.Job], so every Make and Check runs as a
// sequence of short resumptions instead of one long call.  Callers that want
// to drive the slices themselves use [BcryptHasher.Begin], which returns the
// job unstarted.
//
// # Quick start
//
//	h, err := hashing.NewBcryptHasher(hashing.DefaultBcryptOptions())
//	if err != nil { log.Fatal(err) }
//
//	hash, _ := h.Make("my-secret-password")
//	ok, _   := h.Check("my-secret-password", hash) // true
//
// # Security defaults
//
//   - bcrypt: cost 12 (≈ 250 ms on modern hardware; exceeds OWASP minimum of 10).
//   - slicing: 1 ms per resumption, first batch of 25 iterations.
//
// [Calibrate] measures the host and reports the highest cost that fits a
// latency target.
//
// # Rehash on login
//
// Call [BcryptHasher.NeedsRehash] on every successful login.  It returns true
// when the stored hash used a different cost or the legacy "$2a$" version:
//
//	ok, _ := h.Check(password, storedHash)
//	if ok {
//	    if needs, _ := h.NeedsRehash(storedHash); needs {
//	        newHash, _ := h.Make(password)
//	        persist(userID, newHash)
//	    }
//	}
//
// # Unknown accounts
//
// When a login names an account that does not exist, call
// [BcryptHasher.Dummy] before failing so the response takes as long as a
// real Check.
package hashing
