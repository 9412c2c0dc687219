package bcrypt

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBudget is the wall-clock time a single resumption aims to stay
	// within.
	DefaultBudget = time.Millisecond

	// DefaultInitialBatch is the number of iterations the first batch of a
	// job runs before the slice controller has a measurement to work from.
	DefaultInitialBatch = 25
)

// Option configures a [Job].  Options are applied by [NewJob], [Hash],
// [HashContext] and [Verify].
//
//	h, err := bcrypt.Hash(pw, salt,
//	    bcrypt.WithBudget(2*time.Millisecond),
//	    bcrypt.WithLogger(logger),
//	)
type Option func(*options)

type options struct {
	budget       time.Duration
	initialBatch uint32
	clock        func() time.Time
	logger       logrus.FieldLogger
}

func defaultOptions() options {
	return options{
		budget:       DefaultBudget,
		initialBatch: DefaultInitialBatch,
		clock:        time.Now,
		logger:       logrus.StandardLogger(),
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithBudget sets the per-resumption time budget.  Non-positive values keep
// [DefaultBudget].
func WithBudget(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.budget = d
		}
	}
}

// WithInitialBatch sets the iteration count of the first batch.  Values
// below 1 keep [DefaultInitialBatch].
func WithInitialBatch(n int) Option {
	return func(o *options) {
		if n >= 1 {
			o.initialBatch = uint32(n)
		}
	}
}

// WithClock replaces time.Now as the source of batch timings.  Intended for
// tests and for hosts that account time differently.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithLogger sets the logger for job lifecycle events.  The default is
// logrus' standard logger.  Jobs log at debug level only and never log
// passwords, salts or digests.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
