// Package http exposes slide synthesis and protocol grouping as a small JSON
// API for previewing experiments without a terminal.
package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/internal/presentation/report"
	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/protocol"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Synthesizer builds decks from wire experiments.
type Synthesizer interface {
	BuildWire(wire [][]ops.Record, schema ops.Schema) (*slides.Deck, error)
}

// Server handles the preview API.
type Server struct {
	synth    Synthesizer
	schema   ops.Schema
	logger   *slog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	// Protocol capture claims a process-wide slot, so group requests are
	// serialized.
	captureMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithSchema sets the default wire schema. Requests may override it with
// the "schema" query parameter.
func WithSchema(s ops.Schema) Option {
	return func(srv *Server) {
		srv.schema = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// WithRegistry sets the registry served on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(srv *Server) {
		if reg != nil {
			srv.registry = reg
		}
	}
}

// NewServer creates a Server.
func NewServer(synth Synthesizer, opts ...Option) *Server {
	s := &Server{
		synth:    synth,
		schema:   ops.DefaultSchema,
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lbc_preview_requests_total",
		Help: "Preview API requests by route and status code",
	}, []string{"route", "code"})
	s.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lbc_preview_duration_seconds",
		Help:    "Preview API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	s.registry.MustRegister(s.requests, s.latency)
	return s
}

// NewHandler creates the HTTP handler for synth.
func NewHandler(synth Synthesizer, opts ...Option) http.Handler {
	return NewServer(synth, opts...).Handler()
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.Health)
	r.Post("/v1/slides", s.BuildSlides)
	r.Post("/v1/group", s.GroupProtocol)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return enableCORS(r)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		s.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
		s.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
		s.logger.Debug("request served",
			"method", r.Method,
			"route", route,
			"status", code,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// BuildSlides handles POST /v1/slides. The body is an experiments payload;
// "?format=markdown" returns the Markdown report instead of JSON.
func (s *Server) BuildSlides(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.requestSchema(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	wire, err := experiment.ParsePayload(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	deck, err := s.synth.BuildWire(wire, schema)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ops.ErrMalformedOperation) {
			status = http.StatusUnprocessableEntity
		} else {
			s.logger.Error("synthesis failed", "error", err)
		}
		s.writeError(w, status, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, report.Markdown(deck, r.URL.Query().Get("title")))
		return
	}
	s.writeJSON(w, http.StatusOK, deck)
}

// GroupResponse is the body returned by POST /v1/group.
type GroupResponse struct {
	Name        string         `json:"name,omitempty"`
	WellCount   int            `json:"well_count"`
	Operations  int            `json:"operations"`
	Experiments [][]ops.Record `json:"experiments"`
}

// GroupProtocol handles POST /v1/group. The body is a YAML protocol file.
func (s *Server) GroupProtocol(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.requestSchema(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	file, err := protocol.Parse(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.captureMu.Lock()
	p, err := file.Capture(r.Context())
	s.captureMu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSON(w, http.StatusOK, GroupResponse{
		Name:        p.Name,
		WellCount:   p.WellCount(),
		Operations:  len(p.Ops()),
		Experiments: experiment.Encode(p.Experiments(), schema),
	})
}

func (s *Server) requestSchema(w http.ResponseWriter, r *http.Request) (ops.Schema, bool) {
	name := r.URL.Query().Get("schema")
	if name == "" {
		return s.schema, true
	}
	schema, err := ops.SchemaByName(name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return ops.Schema{}, false
	}
	return schema, true
}

// writeJSON encodes v before writing the header, so an unencodable value is
// reported as a 500 instead of an empty success.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"failed to encode response"}`+"\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
