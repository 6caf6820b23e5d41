package client_test

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/biocompute/pkg/cache"
	"github.com/aretw0/biocompute/pkg/client"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitter_ReusesCompletedJob(t *testing.T) {
	fs, srv := newFakeServer(t)
	reg := prometheus.NewRegistry()
	metrics := client.NewMetrics(reg)
	store := cache.NewMemoryStore()
	s := client.NewSubmitter(newClient(t, srv.URL, client.WithMetrics(metrics)), store, "dyes",
		client.WithSubmitterMetrics(metrics))
	ctx := context.Background()

	first, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, client.StatusComplete, first.Status)

	second, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.JobID, second.JobID)
	assert.JSONEq(t, string(first.Data), string(second.Data))

	assert.Equal(t, 1, fs.count())
	assert.Equal(t, 1.0, counterValue(t, reg, "lbc_cache_lookups_total", "hit"))
	assert.Equal(t, 1.0, counterValue(t, reg, "lbc_cache_lookups_total", "miss"))
	assert.Equal(t, 1.0, counterValue(t, reg, "lbc_submissions_total", "complete"))

	key, err := cache.Key("dyes", sampleExperiments)
	require.NoError(t, err)
	entry, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "dyes", entry.ChallengeID)
	assert.Equal(t, key, entry.ExperimentsHash)
}

func TestSubmitter_NoCache(t *testing.T) {
	fs, srv := newFakeServer(t)
	store := cache.NewMemoryStore()
	s := client.NewSubmitter(newClient(t, srv.URL), store, "dyes")
	ctx := context.Background()

	for range 2 {
		_, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{NoCache: true})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fs.count())
	assert.Zero(t, store.Len())
}

func TestSubmitter_NilStore(t *testing.T) {
	fs, srv := newFakeServer(t)
	s := client.NewSubmitter(newClient(t, srv.URL), nil, "dyes")

	for range 2 {
		_, err := s.Submit(context.Background(), sampleExperiments, client.SubmitOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, fs.count())
}

func TestSubmitter_FailedJobIsNotCached(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.finalStatus = client.StatusFailed
	store := cache.NewMemoryStore()
	s := client.NewSubmitter(newClient(t, srv.URL), store, "dyes")
	ctx := context.Background()

	res, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, client.StatusFailed, res.Status)
	assert.Zero(t, store.Len())

	_, err = s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, fs.count())
}

func TestSubmitter_EvictsCachedFailure(t *testing.T) {
	fs, srv := newFakeServer(t)
	store := cache.NewMemoryStore()
	ctx := context.Background()

	key, err := cache.Key("dyes", sampleExperiments)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, key, &cache.Entry{JobID: "old", Status: cache.StatusFailed}))

	s := client.NewSubmitter(newClient(t, srv.URL), store, "dyes")
	res, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, 1, fs.count())

	entry, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, cache.StatusComplete, entry.Status)
}

func TestSubmitter_NoWaitThenResume(t *testing.T) {
	fs, srv := newFakeServer(t)
	store := cache.NewMemoryStore()
	s := client.NewSubmitter(newClient(t, srv.URL), store, "dyes")
	ctx := context.Background()

	res, err := s.Submit(ctx, sampleExperiments, client.SubmitOptions{NoWait: true})
	require.NoError(t, err)
	assert.Equal(t, client.StatusPending, res.Status)
	assert.Equal(t, 1, store.Len())

	res, err = s.Submit(ctx, sampleExperiments, client.SubmitOptions{})
	require.NoError(t, err)
	assert.Equal(t, "job-1", res.JobID, "pending job is resumed, not resubmitted")
	assert.Equal(t, client.StatusComplete, res.Status)
	assert.Equal(t, 1, fs.count())
}

func TestSubmitter_RedisLockSerializesDuplicates(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.pollsUntilDone = 3
	mr := miniredis.RunT(t)
	rdb := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := client.NewSubmitter(newClient(t, srv.URL), cache.NewRedisStoreFromClient(rdb), "dyes")

	var wg sync.WaitGroup
	results := make([]*client.Result, 3)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Submit(context.Background(), sampleExperiments, client.SubmitOptions{})
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fs.count())
	cached := 0
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, "job-1", r.JobID)
		if r.Cached {
			cached++
		}
	}
	assert.Equal(t, 2, cached)
}
