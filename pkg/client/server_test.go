package client_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/biocompute/pkg/client"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/go-chi/chi/v5"
)

const testKey = "sk_test"

// fakeServer is an in-memory job server. Each job reports pending for
// pollsUntilDone polls and then finishes with finalStatus.
type fakeServer struct {
	mu             sync.Mutex
	jobs           map[string]*fakeJob
	order          []string
	submissions    int
	pollsUntilDone int
	finalStatus    string
	lastBody       map[string]any
}

type fakeJob struct {
	id     string
	status string
	polls  int
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	fs := &fakeServer{
		jobs:           make(map[string]*fakeJob),
		pollsUntilDone: 1,
		finalStatus:    client.StatusComplete,
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testKey {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid API key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/v1/user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"name": "Ada", "email": "ada@example.com"})
	})
	r.Get("/api/v1/user/enrollment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"challenge_id": "dyes", "target_image_base64": "aGVsbG8="})
	})
	r.Get("/api/v1/challenges/{id}/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") != "dyes" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, map[string]any{"entries": []map[string]any{
			{"user_name": "Ada", "best_score": 0.93},
			{"user_name": "Bob", "best_score": nil},
		}})
	})
	r.Post("/api/v1/jobs", fs.handleSubmit)
	r.Get("/api/v1/jobs", fs.handleList)
	r.Get("/api/v1/jobs/{id}", fs.handleGet)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fs, srv
}

func (fs *fakeServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.submissions++
	fs.lastBody = body
	job := &fakeJob{id: fmt.Sprintf("job-%d", fs.submissions), status: client.StatusPending}
	fs.jobs[job.id] = job
	fs.order = append(fs.order, job.id)
	writeJSON(w, map[string]any{"id": job.id, "status": job.status})
}

func (fs *fakeServer) handleList(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]map[string]any, 0, len(fs.order))
	for _, id := range fs.order {
		out = append(out, map[string]any{"id": id, "status": fs.jobs[id].status})
	}
	writeJSON(w, out)
}

func (fs *fakeServer) handleGet(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	job, ok := fs.jobs[chi.URLParam(r, "id")]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"detail": "Job not found"})
		return
	}
	job.polls++
	if job.polls > fs.pollsUntilDone && job.status == client.StatusPending {
		job.status = fs.finalStatus
	}
	body := map[string]any{"id": job.id, "status": job.status, "created_at": "2026-01-01T00:00:00Z"}
	switch job.status {
	case client.StatusComplete:
		body["result_data"] = map[string]any{
			"duration_seconds": 42.5,
			"well_images":      map[string]string{"A1": "data:image/png;base64,AAAA"},
		}
	case client.StatusFailed:
		body["error_message"] = "robot jammed"
	}
	writeJSON(w, body)
}

func (fs *fakeServer) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.submissions
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

var fastPoll = config.PollConfig{
	Timeout: 2 * time.Second,
	Initial: time.Millisecond,
	Max:     5 * time.Millisecond,
	Factor:  2,
}

func newClient(t *testing.T, url string, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(url, testKey, append([]client.Option{client.WithPoll(fastPoll)}, opts...)...)
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	return c
}
