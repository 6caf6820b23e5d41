// Package cache remembers submitted experiment payloads so an identical
// resubmission reuses the earlier job instead of occupying the lab again.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/biocompute/pkg/ops"
)

// ErrNotFound is returned by Get when no entry exists for a key.
var ErrNotFound = errors.New("cache entry not found")

// Job statuses that are stored in entries.
const (
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Entry is one cached submission.
type Entry struct {
	ChallengeID     string          `json:"challenge_id"`
	ExperimentsHash string          `json:"experiments_hash"`
	JobID           string          `json:"job_id"`
	Status          string          `json:"status"`
	Result          json.RawMessage `json:"result"`
	Error           string          `json:"error,omitempty"`
}

// Store persists entries by key.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, entry *Entry) error
	Remove(ctx context.Context, key string) error
	// Clear removes every entry and reports how many were removed.
	Clear(ctx context.Context) (int, error)
}

// UnlockFunc releases a lock taken by a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker is implemented by stores shared between processes. Callers hold the
// lock for a key while submitting so concurrent runs of the same payload
// produce one job.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

type keyPayload struct {
	ChallengeID string         `json:"challenge_id"`
	Experiments [][]ops.Record `json:"experiments"`
}

// Key is the hex SHA-256 of the canonical JSON form of a submission: keys
// sorted, no insignificant whitespace.
func Key(challengeID string, experiments [][]ops.Record) (string, error) {
	if experiments == nil {
		experiments = [][]ops.Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(keyPayload{ChallengeID: challengeID, Experiments: experiments}); err != nil {
		return "", fmt.Errorf("failed to encode cache key payload: %w", err)
	}
	sum := sha256.Sum256(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return hex.EncodeToString(sum[:]), nil
}
