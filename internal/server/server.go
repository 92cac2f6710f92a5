package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/chartmask/internal/detection"
	"github.com/ironsheep/chartmask/internal/imaging"
	"github.com/ironsheep/chartmask/internal/label"
	"github.com/ironsheep/chartmask/internal/mask"
	"github.com/ironsheep/chartmask/internal/ocr"
	"github.com/ironsheep/chartmask/internal/scoring"
)

// ServerName is reported in the initialize handshake.
const ServerName = "chartmask"

// Server handles MCP protocol communication
type Server struct {
	cache      *imaging.ImageCache
	classifier *label.Classifier
	recognizer ocr.Recognizer
	maskOpts   mask.Options
	regionOpts detection.Options
	scoreOpts  scoring.Options
	debugTint  string
	version    string
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
}

// Option configures a Server.
type Option func(*Server)

// WithRecognizer enables OCR in regions_extract.
func WithRecognizer(r ocr.Recognizer) Option {
	return func(s *Server) {
		s.recognizer = r
	}
}

// WithClassifier replaces the default label rules.
func WithClassifier(c *label.Classifier) Option {
	return func(s *Server) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithMaskOptions sets the dilation used by mask_generate. The factor is
// taken from each call.
func WithMaskOptions(opts mask.Options) Option {
	return func(s *Server) {
		s.maskOpts = opts
	}
}

// WithRegionOptions sets the region extraction parameters.
func WithRegionOptions(opts detection.Options) Option {
	return func(s *Server) {
		s.regionOpts = opts
	}
}

// WithScoringOptions sets the default scoring parameters.
func WithScoringOptions(opts scoring.Options) Option {
	return func(s *Server) {
		s.scoreOpts = opts
	}
}

// WithDebugTint sets the overlay colour of debug composites.
func WithDebugTint(tint string) Option {
	return func(s *Server) {
		s.debugTint = tint
	}
}

// WithVersion sets the version reported by initialize.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts ...Option) *Server {
	s := &Server{
		cache:      imaging.NewImageCache(),
		classifier: label.NewClassifier(),
		scoreOpts:  scoring.DefaultOptions(),
		version:    "dev",
		in:         os.Stdin,
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Run reads requests until the input ends or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(s.out)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
