package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/biocompute"
	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/internal/presentation/report"
	"github.com/aretw0/biocompute/pkg/color"
	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/protocol"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const paletteURI = "lbc://palette"

// SlidesResponse is the structured result of build_slides.
type SlidesResponse struct {
	Deck     *slides.Deck `json:"deck" jsonschema_description:"One slide per lockstep batch plus the reagent legend"`
	Markdown string       `json:"markdown,omitempty" jsonschema_description:"Markdown report, when format is markdown"`
}

// GroupResponse is the structured result of group_protocol.
type GroupResponse struct {
	Name        string         `json:"name,omitempty" jsonschema_description:"Protocol name"`
	WellCount   int            `json:"well_count" jsonschema_description:"Number of wells the protocol addresses"`
	Experiments [][]ops.Record `json:"experiments" jsonschema_description:"Wire records grouped by well"`
}

// Synthesizer builds decks from wire experiments.
type Synthesizer interface {
	BuildWire(wire [][]ops.Record, schema ops.Schema) (*slides.Deck, error)
}

// Server exposes slide synthesis to MCP clients as tools.
type Server struct {
	synth     Synthesizer
	schema    ops.Schema
	palette   color.Palette
	logger    *slog.Logger
	mcpServer *server.MCPServer

	captureMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithSchema sets the default wire schema.
func WithSchema(s ops.Schema) Option {
	return func(srv *Server) { srv.schema = s }
}

// WithPalette sets the palette published as a resource.
func WithPalette(p color.Palette) Option {
	return func(srv *Server) { srv.palette = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(synth Synthesizer, opts ...Option) *Server {
	s := &Server{
		synth:     synth,
		schema:    ops.DefaultSchema,
		palette:   color.Default,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("lbc-mcp", strings.TrimSpace(biocompute.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	buildTool := mcp.NewTool("build_slides",
		mcp.WithDescription("Replay per-well experiments in lockstep and return one slide per batch with well colors and titles."),
		mcp.WithString("experiments", mcp.Required(), mcp.Description(`JSON experiments: {"experiments": [[op, ...], ...]} or a bare array`)),
		mcp.WithString("schema", mcp.Description("Wire schema of the records: v1 (op/volume) or v2 (type/volume_ul)")),
		mcp.WithString("format", mcp.Description("json (default) or markdown")),
		mcp.WithString("title", mcp.Description("Heading of the markdown report")),
		mcp.WithOutputSchema[SlidesResponse](),
	)
	s.mcpServer.AddTool(buildTool, mcp.NewStructuredToolHandler(s.handleBuildSlides))

	groupTool := mcp.NewTool("group_protocol",
		mcp.WithDescription("Capture a YAML protocol and return its operations grouped by well in wire form."),
		mcp.WithString("protocol", mcp.Required(), mcp.Description("YAML protocol document (name, groups of count and steps)")),
		mcp.WithString("schema", mcp.Description("Wire schema of the returned records: v1 or v2")),
		mcp.WithOutputSchema[GroupResponse](),
	)
	s.mcpServer.AddTool(groupTool, mcp.NewStructuredToolHandler(s.handleGroupProtocol))
}

func (s *Server) argSchema(args map[string]interface{}) (ops.Schema, error) {
	name, _ := args["schema"].(string)
	if name == "" {
		return s.schema, nil
	}
	return ops.SchemaByName(name)
}

func (s *Server) handleBuildSlides(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SlidesResponse, error) {
	schema, err := s.argSchema(args)
	if err != nil {
		return SlidesResponse{}, err
	}
	raw, _ := args["experiments"].(string)
	wire, err := experiment.ParsePayload([]byte(raw))
	if err != nil {
		return SlidesResponse{}, err
	}
	deck, err := s.synth.BuildWire(wire, schema)
	if err != nil {
		s.logger.Warn("build_slides rejected", "error", err)
		return SlidesResponse{}, fmt.Errorf("build failed: %w", err)
	}

	resp := SlidesResponse{Deck: deck}
	if format, _ := args["format"].(string); format == "markdown" {
		title, _ := args["title"].(string)
		resp.Markdown = report.Markdown(deck, title)
	}
	return resp, nil
}

func (s *Server) handleGroupProtocol(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GroupResponse, error) {
	schema, err := s.argSchema(args)
	if err != nil {
		return GroupResponse{}, err
	}
	doc, _ := args["protocol"].(string)
	file, err := protocol.Parse([]byte(doc))
	if err != nil {
		return GroupResponse{}, err
	}

	s.captureMu.Lock()
	p, err := file.Capture(ctx)
	s.captureMu.Unlock()
	if err != nil {
		return GroupResponse{}, fmt.Errorf("capture failed: %w", err)
	}

	return GroupResponse{
		Name:        p.Name,
		WellCount:   p.WellCount(),
		Experiments: experiment.Encode(p.Experiments(), schema),
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(paletteURI, "Reagent Palette",
		mcp.WithResourceDescription("Display colors of the built-in reagents"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.palette)
		if err != nil {
			return nil, fmt.Errorf("failed to encode palette: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      paletteURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
