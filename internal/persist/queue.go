// Package persist runs record writes off the request path. Jobs run one at a
// time in submission order, so a finalize's session, stats and template
// writes are issued in that order.
package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrQueueClosed = errors.New("persist queue is closed")

// Job is one record write.
type Job struct {
	UserID     string
	Collection string
	RecordID   string
	Op         string // "upsert" or "delete"
	Run        func(ctx context.Context) error

	// OnSuccess and OnFailure are called from the worker goroutine once the
	// job is settled. Either may be nil.
	OnSuccess func(Job)
	OnFailure func(Job, error)
}

// Observer is told about every settled job; metrics hang off it.
type Observer interface {
	JobSettled(collection, op string, err error)
}

// Config tunes retries.
type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	Buffer       int
	JobTimeout   time.Duration
}

// Queue is a FIFO of jobs drained by a single worker.
type Queue struct {
	cfg      Config
	observer Observer
	jobs     chan Job

	mu     sync.RWMutex
	closed bool

	stopCh chan struct{}
	done   chan struct{}
}

// NewQueue starts the worker. Call Close to drain and stop it.
func NewQueue(cfg Config, observer Observer) *Queue {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 10 * time.Second
	}
	q := &Queue{
		cfg:      cfg,
		observer: observer,
		jobs:     make(chan Job, cfg.Buffer),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go q.loop()
	return q
}

// Submit enqueues jobs in order. It blocks while the buffer is full.
func (q *Queue) Submit(jobs ...Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	for _, j := range jobs {
		q.jobs <- j
	}
	return nil
}

// Close stops accepting jobs, waits for queued ones to settle, or for ctx.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		close(q.stopCh)
		<-q.done
		return ctx.Err()
	}
}

func (q *Queue) loop() {
	defer close(q.done)
	for job := range q.jobs {
		select {
		case <-q.stopCh:
			q.settle(job, ErrQueueClosed)
			continue
		default:
		}
		q.settle(job, q.run(job))
	}
}

func (q *Queue) run(job Job) error {
	var err error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), q.cfg.JobTimeout)
		err = job.Run(ctx)
		cancel()
		if err == nil {
			return nil
		}
		log.WithFields(log.Fields{
			"user":       job.UserID,
			"collection": job.Collection,
			"record":     job.RecordID,
			"op":         job.Op,
			"attempt":    attempt,
		}).Warnf("persist job failed: %v", err)

		if attempt == q.cfg.MaxAttempts {
			break
		}
		select {
		case <-q.stopCh:
			return err
		case <-time.After(q.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

func (q *Queue) settle(job Job, err error) {
	if q.observer != nil {
		q.observer.JobSettled(job.Collection, job.Op, err)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"user":       job.UserID,
			"collection": job.Collection,
			"record":     job.RecordID,
		}).Errorf("persist job gave up: %v", err)
		if job.OnFailure != nil {
			job.OnFailure(job, err)
		}
		return
	}
	if job.OnSuccess != nil {
		job.OnSuccess(job)
	}
}
