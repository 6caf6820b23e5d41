package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/pkg/cache"
	"github.com/aretw0/biocompute/pkg/ops"
)

// SubmitOptions control a single submission.
type SubmitOptions struct {
	// NoCache bypasses the cache for both lookup and storage.
	NoCache bool
	// NoWait returns as soon as the job is created.
	NoWait bool
}

// Submitter submits experiments through a Client, reusing earlier jobs for
// identical payloads recorded in a cache.Store.
type Submitter struct {
	client      *Client
	store       cache.Store
	challengeID string
	logger      *slog.Logger
	metrics     *Metrics
	lockTTL     time.Duration
}

// SubmitterOption configures a Submitter.
type SubmitterOption func(*Submitter)

// WithSubmitterLogger sets the logger.
func WithSubmitterLogger(l *slog.Logger) SubmitterOption {
	return func(s *Submitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSubmitterMetrics records cache lookups.
func WithSubmitterMetrics(m *Metrics) SubmitterOption {
	return func(s *Submitter) {
		s.metrics = m
	}
}

// WithLockTTL bounds how long a shared store lock is held.
func WithLockTTL(ttl time.Duration) SubmitterOption {
	return func(s *Submitter) {
		s.lockTTL = ttl
	}
}

// NewSubmitter creates a Submitter. A nil store disables caching.
func NewSubmitter(c *Client, store cache.Store, challengeID string, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		client:      c,
		store:       store,
		challengeID: challengeID,
		logger:      logging.NewNop(),
		lockTTL:     c.poll.Timeout + time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends experiments unless an identical payload already completed.
// A cached failure is evicted and resubmitted; a cached pending job is
// resumed instead of submitted again.
func (s *Submitter) Submit(ctx context.Context, experiments [][]ops.Record, opts SubmitOptions) (*Result, error) {
	if countOps(experiments) == 0 {
		return nil, ErrNoOperations
	}
	if s.store == nil || opts.NoCache {
		return s.submit(ctx, experiments, opts, "", nil)
	}

	key, err := cache.Key(s.challengeID, experiments)
	if err != nil {
		return nil, err
	}

	if locker, ok := s.store.(cache.Locker); ok {
		unlock, err := locker.Lock(ctx, key, s.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock submission: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release submission lock", "key", key, "error", err)
			}
		}()
	}

	entry, err := s.store.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrNotFound):
		s.metrics.cacheLookup("miss")
		return s.submit(ctx, experiments, opts, key, nil)
	case err != nil:
		s.logger.Warn("cache lookup failed, submitting", "key", key, "error", err)
		s.metrics.cacheLookup("error")
		return s.submit(ctx, experiments, opts, key, nil)
	}

	switch entry.Status {
	case cache.StatusComplete:
		s.metrics.cacheLookup("hit")
		s.logger.Info("reusing cached job", "job_id", entry.JobID)
		return &Result{JobID: entry.JobID, Status: entry.Status, Data: entry.Result, Cached: true}, nil
	case cache.StatusFailed:
		s.metrics.cacheLookup("evicted")
		s.logger.Info("evicting failed cached job", "job_id", entry.JobID)
		if err := s.store.Remove(ctx, key); err != nil {
			return nil, fmt.Errorf("failed to evict cache entry: %w", err)
		}
		return s.submit(ctx, experiments, opts, key, nil)
	default:
		s.metrics.cacheLookup("pending")
		return s.submit(ctx, experiments, opts, key, entry)
	}
}

// submit creates a job, or resumes pending when non-nil, and records its
// progress under key when key is set.
func (s *Submitter) submit(ctx context.Context, experiments [][]ops.Record, opts SubmitOptions, key string, pending *cache.Entry) (*Result, error) {
	var jobID, status string
	if pending != nil {
		jobID, status = pending.JobID, pending.Status
		s.logger.Info("resuming pending job", "job_id", jobID)
	} else {
		job, err := s.client.Submit(ctx, experiments)
		if err != nil {
			return nil, err
		}
		jobID, status = job.ID, job.Status
		s.record(ctx, key, &cache.Entry{JobID: jobID, Status: status})
	}

	if opts.NoWait {
		return &Result{JobID: jobID, Status: status}, nil
	}

	res, err := s.client.Wait(ctx, jobID)
	if err != nil {
		return nil, err
	}
	s.client.metrics.submission(res.Status)

	if res.Status == StatusFailed {
		s.forget(ctx, key)
	} else {
		s.record(ctx, key, &cache.Entry{JobID: res.JobID, Status: res.Status, Result: res.Data, Error: res.Error})
	}
	return res, nil
}

func (s *Submitter) record(ctx context.Context, key string, entry *cache.Entry) {
	if key == "" {
		return
	}
	entry.ChallengeID = s.challengeID
	entry.ExperimentsHash = key
	if err := s.store.Put(ctx, key, entry); err != nil {
		s.logger.Warn("failed to cache submission", "key", key, "error", err)
	}
}

func (s *Submitter) forget(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("failed to evict cache entry", "key", key, "error", err)
	}
}
