// Package bcrypt implements the bcrypt password hash as a resumable,
// time-sliced computation.
//
// # Why sliced
//
// A bcrypt hash at a realistic cost takes hundreds of milliseconds.  Hosts
// that multiplex many tasks on one thread of control (event loops,
// cooperative schedulers) cannot afford a call that blocks for that long.
// A [Job] therefore does its work in resumptions: each call to [Job.Resume]
// runs as many expansion iterations as fit in a small time budget (1 ms by
// default), then returns.  An adaptive controller measures every batch and
// resizes the next one so that resumptions track the budget.
//
// The result does not depend on how the work was sliced.  Exactly 2^cost
// iterations run, each once, in order, whether the job finishes in one
// resumption or in thousands.
//
// # Quick start
//
//	salt, err := bcrypt.GenerateSalt(12)
//	if err != nil { log.Fatal(err) }
//
//	hash, _ := bcrypt.Hash([]byte("hard2guess"), salt) // blocking
//	ok, _   := bcrypt.Verify([]byte("hard2guess"), hash)
//
// Non-blocking:
//
//	job, _ := bcrypt.NewJob(password, salt)
//	defer job.Dispose()
//	for done := false; !done; {
//	    done, _ = job.Resume()
//	}
//	hash, _ := job.Result()
//
// # Crypt string format
//
//	$2b$12$<22-char salt><31-char digest>
//
// Salt and digest use bcrypt's own base64 alphabet
// ("./A-Za-z0-9", in that order) without padding.  The digest encodes 23 of
// the 24 ciphertext bytes.  Minor version "a" hashes the whole password;
// minor "b" (the one this package emits) hashes at most 72 bytes of it.
//
// # Key material
//
// Password copies, salts, ciphertext and Blowfish state are zeroed with
// package secure when a job finishes or is disposed.  Abandoning a job
// without [Job.Dispose] leaves them in memory until the garbage collector
// runs the fallback cleanup.
package bcrypt
