package bcrypt

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blowfish"

	"github.com/hasbyte1/go-sliced-bcrypt/secure"
)

// State is the lifecycle stage of a [Job].
type State int

const (
	// StateCreated: validated, no cipher work done yet.
	StateCreated State = iota
	// StateExpanding: the 2^cost expansion iterations are in progress.
	StateExpanding
	// StateFinalizing: all iterations are done; the magic text is being
	// encrypted.  A job is only observed in this state from within Resume.
	StateFinalizing
	// StateDone: the crypt string is available and all buffers are erased.
	StateDone
	// StateDisposed: the job was abandoned before completion and erased.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateExpanding:
		return "expanding"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateDisposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Job is one resumable bcrypt computation.
//
// Each call to [Job.Resume] performs a bounded amount of work, sized by the
// slice controller to fit the configured budget, and reports whether the
// hash is finished.  A job may be resumed any number of times; the total
// work is always exactly 2^cost iterations, executed once each and in order.
//
//	job, err := bcrypt.NewJob(password, salt)
//	if err != nil { ... }
//	defer job.Dispose()
//	for {
//	    done, err := job.Resume()
//	    if err != nil { ... }
//	    if done { break }
//	    // yield to other work here
//	}
//	hash, _ := job.Result()
//
// # Erasure
//
// The job holds a copy of the password, the raw salt and the Blowfish state.
// They are zeroed when the job finishes.  A caller that abandons a job
// before it finishes must call [Job.Dispose]; a cleanup registered with the
// runtime erases unreachable jobs as a fallback, but its timing is up to the
// garbage collector.
//
// # Thread safety
//
// A job is a single sequential computation.  Concurrent calls are
// serialised; independent jobs share nothing and may run in parallel.
type Job struct {
	mu sync.Mutex

	state       State
	minor       byte
	cost        int
	rounds      uint32
	k           uint32
	batch       uint32
	resumptions int
	result      string

	bufs    *buffers
	cleanup runtime.Cleanup

	ctl controller
	log logrus.FieldLogger

	// onIteration, when set, is called after every iteration with the new
	// progress index.
	onIteration func(k uint32)
}

// buffers holds everything that must be erased.  It is a separate
// allocation so the runtime cleanup can reach it without keeping the Job
// alive.
type buffers struct {
	cipher *blowfish.Cipher
	key    []byte
	ctext  [ciphertextLen]byte
	salt   []byte
}

// erase zeroes the cipher state, the password copy, the ciphertext and the
// salt, in that order.
func (b *buffers) erase() {
	if b.cipher != nil {
		wipeCipher(b.cipher)
		b.cipher = nil
	}
	secure.Wipe(b.key)
	secure.Wipe(b.ctext[:])
	secure.Wipe(b.salt)
}

// NewJob validates salt and prepares a job hashing password with it.
//
// salt may be a bare salt string ("$2b$12$<22 chars>") or a complete crypt
// string, whose digest is ignored.  All codec errors ([ErrParse],
// [ErrUnsupportedVersion], [ErrInvalidCost], [ErrInvalidSalt]) are reported
// here, before any cipher work.
//
// For minor version "b" passwords longer than [MaxPasswordLen] bytes are
// truncated.  The caller's password slice is copied and never modified.
func NewJob(password []byte, salt string, opts ...Option) (*Job, error) {
	cs, err := Decode(salt)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	b := &buffers{
		key:  keyFor(password, cs.Minor),
		salt: make([]byte, SaltLen),
	}
	copy(b.salt, cs.Salt[:])
	secure.Wipe(cs.Salt[:])

	j := &Job{
		state:  StateCreated,
		minor:  cs.Minor,
		cost:   cs.Cost,
		rounds: cs.Rounds(),
		batch:  o.initialBatch,
		bufs:   b,
		ctl:    controller{budget: o.budget, clock: o.clock},
		log:    o.logger,
	}
	j.cleanup = runtime.AddCleanup(j, (*buffers).erase, b)
	return j, nil
}

// keyFor returns the expansion key: the password, truncated for minor "b",
// followed by a NUL byte.
func keyFor(password []byte, minor byte) []byte {
	n := len(password)
	if minor == MinorB && n > MaxPasswordLen {
		n = MaxPasswordLen
	}
	key := make([]byte, n+1)
	copy(key, password[:n])
	return key
}

// Resume runs the job for one resumption using the default accounting
// ([NewTimeslice]) against the configured budget.  It returns true once the
// hash is complete; [Job.Result] then returns it.
//
// Resuming a finished job is a no-op returning true.  Resuming a disposed
// job returns [ErrJobDisposed].
func (j *Job) Resume() (bool, error) {
	return j.ResumeSlice(NewTimeslice())
}

// ResumeSlice is [Job.Resume] with caller-supplied budget accounting.
func (j *Job) ResumeSlice(ts Timeslice) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch j.state {
	case StateDone:
		return true, nil
	case StateDisposed:
		return false, ErrJobDisposed
	case StateCreated:
		c, err := setupCipher(j.bufs.key, j.bufs.salt)
		if err != nil {
			j.releaseLocked(StateDisposed)
			return false, fmt.Errorf("bcrypt: key setup: %w", err)
		}
		j.bufs.cipher = c
		j.state = StateExpanding
		j.log.WithFields(logrus.Fields{
			"cost":  j.cost,
			"minor": string(j.minor),
		}).Debug("bcrypt: job started")
	}

	j.resumptions++
	if j.state == StateExpanding {
		if !j.expand(ts) {
			return false, nil
		}
		j.state = StateFinalizing
	}

	encryptMagic(j.bufs.cipher, &j.bufs.ctext)
	j.result = encodePrefix(j.minor, j.cost, j.bufs.salt) + encodeBase64(j.bufs.ctext[:digestLen])
	j.releaseLocked(StateDone)
	j.log.WithField("resumptions", j.resumptions).Debug("bcrypt: job done")
	return true, nil
}

func (j *Job) iterate() {
	expandIteration(j.bufs.cipher, j.bufs.key, j.bufs.salt)
	j.k++
	if j.onIteration != nil {
		j.onIteration(j.k)
	}
}

// Result returns the crypt string and true once the job is done.
func (j *Job) Result() (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != StateDone {
		return "", false
	}
	return j.result, true
}

// Dispose erases the job's key material and abandons it.  It is safe to call
// at any point, any number of times; on a finished job it does nothing.
func (j *Job) Dispose() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == StateDone || j.state == StateDisposed {
		return
	}
	j.releaseLocked(StateDisposed)
	j.log.WithFields(logrus.Fields{
		"progress": j.k,
		"rounds":   j.rounds,
	}).Debug("bcrypt: job disposed")
}

func (j *Job) releaseLocked(final State) {
	j.state = final
	j.cleanup.Stop()
	j.bufs.erase()
}

// State returns the job's lifecycle stage.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Progress returns the number of completed iterations and the total.
func (j *Job) Progress() (done, rounds uint32) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.k, j.rounds
}

// BatchSize returns the iteration count the next batch will run.
func (j *Job) BatchSize() uint32 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.batch
}

// Resumptions returns how many resumptions have performed work.
func (j *Job) Resumptions() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.resumptions
}

// Cost returns the job's cost factor.
func (j *Job) Cost() int { return j.cost }

// Minor returns the job's minor version byte.
func (j *Job) Minor() byte { return j.minor }
