package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/biocompute/pkg/client"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleExperiments = [][]ops.Record{
	{{"type": "fill", "well_idx": 0, "reagent": "water", "volume_ul": 100.0}},
	{{"type": "mix", "well_idx": 1}},
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := client.New("", "sk")
	assert.ErrorIs(t, err, client.ErrMissingCredentials)
	_, err = client.New("http://x", "")
	assert.ErrorIs(t, err, client.ErrMissingCredentials)

	_, err = client.FromConfig(config.Default())
	assert.ErrorIs(t, err, config.ErrNotConfigured)
}

func TestClient_User(t *testing.T) {
	_, srv := newFakeServer(t)
	u, err := newClient(t, srv.URL+"/").User(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
}

func TestClient_APIError(t *testing.T) {
	_, srv := newFakeServer(t)
	c, err := client.New(srv.URL, "sk_wrong")
	require.NoError(t, err)

	_, err = c.User(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid API key", apiErr.Message)
}

func TestClient_APIErrorFallsBackToBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).User(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestClient_SubmitAndWait(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.pollsUntilDone = 3
	reg := prometheus.NewRegistry()
	c := newClient(t, srv.URL, client.WithMetrics(client.NewMetrics(reg)))
	ctx := context.Background()

	job, err := c.Submit(ctx, sampleExperiments)
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, client.StatusPending, job.Status)
	assert.Len(t, fs.lastBody["experiments"], 2)

	res, err := c.Wait(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, client.StatusComplete, res.Status)
	assert.Equal(t, 42.5, res.DurationSeconds())
	assert.Equal(t, "data:image/png;base64,AAAA", res.WellImages()["A1"])

	assert.Equal(t, 4.0, counterValue(t, reg, "lbc_poll_attempts_total", ""))
	assert.Equal(t, 1.0, counterValue(t, reg, "lbc_submissions_total", "submitted"))
}

func TestClient_SubmitRejectsEmpty(t *testing.T) {
	fs, srv := newFakeServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Submit(context.Background(), [][]ops.Record{{}, {}})
	assert.ErrorIs(t, err, client.ErrNoOperations)
	assert.Zero(t, fs.count())
}

func TestClient_WaitFailedJob(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.finalStatus = client.StatusFailed
	c := newClient(t, srv.URL)
	ctx := context.Background()

	job, err := c.Submit(ctx, sampleExperiments)
	require.NoError(t, err)
	res, err := c.Wait(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, client.StatusFailed, res.Status)
	assert.Equal(t, "robot jammed", res.Error)
	assert.Empty(t, res.WellImages())
}

func TestClient_WaitTimeout(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.pollsUntilDone = 1 << 30
	c := newClient(t, srv.URL, client.WithPoll(config.PollConfig{Timeout: 50 * time.Millisecond}))
	ctx := context.Background()

	job, err := c.Submit(ctx, sampleExperiments)
	require.NoError(t, err)
	_, err = c.Wait(ctx, job.ID)
	assert.ErrorIs(t, err, client.ErrTimeout)
}

func TestClient_WaitCancelled(t *testing.T) {
	fs, srv := newFakeServer(t)
	fs.pollsUntilDone = 1 << 30
	c := newClient(t, srv.URL)

	job, err := c.Submit(context.Background(), sampleExperiments)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Wait(ctx, job.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_JobsAndLeaderboard(t *testing.T) {
	_, srv := newFakeServer(t)
	c := newClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.Submit(ctx, sampleExperiments)
	require.NoError(t, err)

	jobs, err := c.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)

	job, err := c.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00Z", job.Raw["created_at"])

	_, err = c.GetJob(ctx, "nope")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Job not found", apiErr.Message)

	target, err := c.Target(ctx)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", target)

	entries, err := c.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ada", entries[0].UserName)
	require.NotNil(t, entries[0].BestScore)
	assert.Equal(t, 0.93, *entries[0].BestScore)
	assert.Nil(t, entries[1].BestScore)
}

// counterValue sums the counter samples of name whose single label equals
// label, or all samples when label is empty.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" {
				labels := m.GetLabel()
				if len(labels) != 1 || labels[0].GetValue() != label {
					continue
				}
			}
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
