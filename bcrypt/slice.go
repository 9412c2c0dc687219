package bcrypt

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timeslice is the host's view of how much of the current resumption's
// budget has been used.  The job reports each measured batch as a
// percentage of its budget, already clamped to [1, 100]; Consume returns
// true once the resumption should yield.
//
// A scheduler that wants several jobs to share one budget can pass the same
// Timeslice to each [Job.ResumeSlice] call within a tick.
type Timeslice interface {
	Consume(pct int) bool
}

// TimesliceFunc adapts a function to [Timeslice].
type TimesliceFunc func(pct int) bool

// Consume calls f(pct).
func (f TimesliceFunc) Consume(pct int) bool { return f(pct) }

// NewTimeslice returns the default accounting: percentages are summed and
// the slice is exhausted once the sum reaches 100.
func NewTimeslice() Timeslice { return &budgetSlice{} }

type budgetSlice struct{ used int }

func (b *budgetSlice) Consume(pct int) bool {
	b.used += pct
	return b.used >= 100
}

// controller measures batches and sizes the next one.
type controller struct {
	budget time.Duration
	clock  func() time.Time
}

// percent converts elapsed into a percentage of the budget.  The raw value is
// added to *total; the return value is clamped to [1, 100].
func (c controller) percent(elapsed time.Duration, total *int) int {
	pct := int(elapsed * 100 / c.budget)
	*total += pct
	switch {
	case pct > 100:
		return 100
	case pct < 1:
		return 1
	}
	return pct
}

// adjustBatch returns the batch size for the next resumption given the
// number of iterations done during this one and the accumulated raw
// percentage.  Under budget keeps the pace; up to twice the budget shrinks
// it proportionally; beyond that divides by the overrun factor.  The result
// is never below 1.
func adjustBatch(done uint32, total int) uint32 {
	next := uint64(done)
	switch m := total / 100; {
	case m <= 0:
	case m == 1:
		next -= next * uint64(total-100) / 100
	default:
		next /= uint64(m)
	}
	if next < 1 {
		next = 1
	}
	return uint32(next)
}

// expand runs batches from j.k until rounds are exhausted or ts asks to
// yield.  It reports whether all rounds are done.
func (j *Job) expand(ts Timeslice) bool {
	start := j.k
	end := j.batchEnd(j.k)
	total := 0

	for {
		t0 := j.ctl.clock()
		for j.k < end {
			j.iterate()
		}
		if j.k == j.rounds {
			return true
		}
		elapsed := j.ctl.clock().Sub(t0)

		if ts.Consume(j.ctl.percent(elapsed, &total)) {
			j.batch = adjustBatch(j.k-start, total)
			j.log.WithFields(logrus.Fields{
				"progress": j.k,
				"rounds":   j.rounds,
				"batch":    j.batch,
				"pct":      total,
			}).Debug("bcrypt: job suspended")
			return false
		}
		end = j.batchEnd(end)
	}
}

// batchEnd returns min(from+batch, rounds) without overflowing at cost 31.
func (j *Job) batchEnd(from uint32) uint32 {
	end := uint64(from) + uint64(j.batch)
	if end > uint64(j.rounds) {
		end = uint64(j.rounds)
	}
	return uint32(end)
}
