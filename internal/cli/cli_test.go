package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/pkg/cache"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const protocolYAML = `name: gradient
groups:
  - count: 2
    steps:
      - fill: {reagent: water, volume: 100}
      - gradient: {reagent: red_dye, from: 10, to: 20}
      - mix
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadInput(t *testing.T) {
	ctx := context.Background()

	t.Run("YAML Protocol", func(t *testing.T) {
		in, err := cli.LoadInput(ctx, writeFile(t, "p.yaml", protocolYAML), ops.DefaultSchema)
		require.NoError(t, err)
		assert.Equal(t, "gradient", in.Name)
		assert.Len(t, in.Experiments, 2)
		assert.Equal(t, 6, in.OperationCount())
		require.NotNil(t, in.Protocol)
	})

	t.Run("JSON Payload", func(t *testing.T) {
		path := writeFile(t, "run42.json", `{"experiments": [[{"op": "mix", "well_idx": 0}]]}`)
		in, err := cli.LoadInput(ctx, path, ops.SchemaV1)
		require.NoError(t, err)
		assert.Equal(t, "run42", in.Name)
		assert.Equal(t, 1, in.OperationCount())
		assert.Nil(t, in.Protocol)
	})

	t.Run("Schema Mismatch", func(t *testing.T) {
		path := writeFile(t, "v1.json", `[[{"op": "mix", "well_idx": 0}]]`)
		_, err := cli.LoadInput(ctx, path, ops.SchemaV2)
		assert.ErrorIs(t, err, ops.ErrMalformedOperation)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := cli.LoadInput(ctx, writeFile(t, "p.py", "print()"), ops.DefaultSchema)
		assert.ErrorContains(t, err, "unsupported file type")
	})

	t.Run("Invalid Operation", func(t *testing.T) {
		path := writeFile(t, "bad.yml", "groups: [{count: 1, steps: [{fill: {reagent: '', volume: 5}}]}]")
		_, err := cli.LoadInput(ctx, path, ops.DefaultSchema)
		assert.Error(t, err)
	})
}

func TestVisualize_RejectsNonFiniteVolume(t *testing.T) {
	for _, v := range []string{".nan", ".inf"} {
		t.Run(v, func(t *testing.T) {
			path := writeFile(t, "bad.yaml", "groups: [{count: 1, steps: [{fill: {reagent: water, volume: "+v+"}}]}]")
			var out bytes.Buffer
			err := cli.Visualize(context.Background(), cli.VisualizeOptions{
				Path:   path,
				Format: cli.FormatJSON,
				Schema: ops.DefaultSchema,
				Out:    &out,
			})
			assert.ErrorContains(t, err, "volume must be finite")
			assert.Empty(t, out.String())
		})
	}
}

func TestPresent(t *testing.T) {
	deck, err := slides.New().BuildWire([][]ops.Record{{{"type": "image", "well_idx": 0}}}, ops.SchemaV2)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.Present(ctx, &buf, deck, "x", cli.FormatJSON))
		var back slides.Deck
		require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
		assert.Equal(t, "Image A1", back.Slides[0].Title)
	})

	t.Run("Text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.Present(ctx, &buf, deck, "x", cli.FormatText))
		assert.Contains(t, buf.String(), "Step 1 of 1")
	})

	t.Run("Text Empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.Present(ctx, &buf, &slides.Deck{}, "x", cli.FormatText))
		assert.Equal(t, "No slides to display.\n", buf.String())
	})

	t.Run("Markdown", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.Present(ctx, &buf, deck, "Imaging", cli.FormatMarkdown))
		assert.Contains(t, buf.String(), "Imaging")
	})

	t.Run("Mermaid", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cli.Present(ctx, &buf, deck, "x", cli.FormatMermaid))
		assert.Contains(t, buf.String(), `step1[["1. Image A1"]]`)
	})

	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, cli.Present(ctx, &bytes.Buffer{}, deck, "x", "pdf"))
	})
}

func TestOpenStore(t *testing.T) {
	cfg := config.Default()

	cfg.Cache.Backend = config.BackendNone
	store, closeFn, err := cli.OpenStore(cfg)
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.NoError(t, closeFn())

	cfg.Cache.Backend = config.BackendFile
	cfg.Cache.Dir = t.TempDir()
	store, _, err = cli.OpenStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.FileStore{}, store)

	cfg.Cache.Backend = config.BackendRedis
	cfg.Cache.Redis.Addr = "127.0.0.1:0"
	store, closeFn, err = cli.OpenStore(cfg)
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisStore{}, store)
	assert.NoError(t, closeFn())
}

func TestSubmit_UsesCache(t *testing.T) {
	var submissions atomic.Int32
	r := chi.NewRouter()
	r.Post("/api/v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		submissions.Add(1)
		_, _ = w.Write([]byte(`{"id": "job-7", "status": "pending"}`))
	})
	r.Get("/api/v1/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "job-7", "status": "complete", "result_data": {"duration_seconds": 3}}`))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	cfg := config.Default()
	cfg.APIKey = "sk_test"
	cfg.BaseURL = srv.URL
	cfg.Cache.Dir = t.TempDir()
	cfg.Poll = config.PollConfig{Timeout: time.Second, Initial: time.Millisecond, Max: time.Millisecond, Factor: 1}

	path := writeFile(t, "p.yaml", protocolYAML)
	var out bytes.Buffer
	opts := cli.SubmitOptions{Path: path, Config: cfg, Out: &out, Logger: logging.NewNop()}

	res, err := cli.Submit(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Contains(t, out.String(), "Job job-7: complete\nDuration: 3.0s")

	out.Reset()
	res, err = cli.Submit(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Contains(t, out.String(), "Job job-7: complete (cached)")
	assert.Equal(t, int32(1), submissions.Load())
}

func TestSubmit_NotConfigured(t *testing.T) {
	_, err := cli.Submit(context.Background(), cli.SubmitOptions{
		Path:   writeFile(t, "p.yaml", protocolYAML),
		Config: config.Default(),
		Out:    &bytes.Buffer{},
		Logger: logging.NewNop(),
	})
	assert.ErrorIs(t, err, config.ErrNotConfigured)
	assert.Equal(t, "Not configured. Run `lbc login` first.", cli.Friendly(err))
}

func TestWatch_RerendersOnChange(t *testing.T) {
	path := writeFile(t, "p.yaml", protocolYAML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renders := make(chan struct{}, 8)
	done := make(chan error, 1)
	var out bytes.Buffer
	go func() {
		done <- cli.Watch(ctx, path, &out, logging.NewNop(), func(ctx context.Context) error {
			renders <- struct{}{}
			return nil
		})
	}()

	waitRender := func() {
		t.Helper()
		select {
		case <-renders:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for render")
		}
	}
	waitRender()

	require.NoError(t, os.WriteFile(path, []byte(protocolYAML+"      - image\n"), 0o644))
	waitRender()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestSignalContext_Cancel(t *testing.T) {
	ctx := cli.NewSignalContext(context.Background())
	ctx.Cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Nil(t, ctx.Signal())
}
