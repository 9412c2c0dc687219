package bcrypt

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Outcome is the result of a job run by a [Scheduler].
type Outcome struct {
	Hash string
	Err  error
}

// Scheduler drives many jobs from a single goroutine, one resumption per
// turn, round-robin.  It is the in-process equivalent of a cooperative host:
// no job ever holds the loop for longer than its budget, and jobs never
// share state.
//
//	s := bcrypt.NewScheduler(nil)
//	go s.Run(ctx)
//	job, _ := bcrypt.NewJob(pw, salt)
//	out := <-s.Submit(job)
type Scheduler struct {
	mu      sync.Mutex
	queue   []*task
	stopped error // set by drain until the next Run
	wake    chan struct{}
	log     logrus.FieldLogger
}

type task struct {
	job *Job
	out chan Outcome
}

// NewScheduler returns an idle scheduler.  A nil logger selects logrus'
// standard logger.
func NewScheduler(log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		wake: make(chan struct{}, 1),
		log:  log,
	}
}

// Submit queues job and returns a channel that receives exactly one
// [Outcome].  The scheduler takes ownership of the job: it is disposed if
// [Scheduler.Run] stops before it finishes.  Submitting after Run has
// returned disposes the job at once and delivers the error Run returned.
func (s *Scheduler) Submit(job *Job) <-chan Outcome {
	t := &task{job: job, out: make(chan Outcome, 1)}
	s.mu.Lock()
	stopped := s.stopped
	if stopped == nil {
		s.queue = append(s.queue, t)
	}
	s.mu.Unlock()

	if stopped != nil {
		job.Dispose()
		t.out <- Outcome{Err: stopped}
		return t.out
	}

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return t.out
}

// Pending returns the number of queued jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Run executes queued jobs until ctx is done, then disposes every job still
// queued, delivers ctx.Err() to each, and returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = nil
	s.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			s.drain(err)
			return err
		}

		t := s.pop()
		if t == nil {
			select {
			case <-ctx.Done():
			case <-s.wake:
			}
			continue
		}

		done, err := t.job.Resume()
		switch {
		case err != nil:
			t.out <- Outcome{Err: err}
		case done:
			h, _ := t.job.Result()
			s.log.WithField("resumptions", t.job.Resumptions()).Debug("bcrypt: scheduled job finished")
			t.out <- Outcome{Hash: h}
		default:
			s.push(t)
		}
	}
}

func (s *Scheduler) pop() *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	t := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return t
}

func (s *Scheduler) push(t *task) {
	s.mu.Lock()
	s.queue = append(s.queue, t)
	s.mu.Unlock()
}

func (s *Scheduler) drain(err error) {
	s.mu.Lock()
	queued := s.queue
	s.queue = nil
	s.stopped = err
	s.mu.Unlock()

	for _, t := range queued {
		t.job.Dispose()
		t.out <- Outcome{Err: err}
	}
	if len(queued) > 0 {
		s.log.WithField("jobs", len(queued)).Debug("bcrypt: scheduler stopped with pending jobs")
	}
}
