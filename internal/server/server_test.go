package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func quietServer(opts ...Option) *Server {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return New(opts...)
}

func TestNew(t *testing.T) {
	s := New()
	if s.cache == nil || s.classifier == nil {
		t.Fatal("New() did not initialize cache and classifier")
	}
	if s.recognizer != nil {
		t.Error("recognizer should be nil unless configured")
	}
	if s.scoreOpts.PredictionThreshold != 200 {
		t.Errorf("default prediction threshold = %d, want 200", s.scoreOpts.PredictionThreshold)
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest(t *testing.T) {
	s := quietServer(WithVersion("1.2.3"))
	ctx := context.Background()

	t.Run("initialize", func(t *testing.T) {
		resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
		if resp == nil || resp.Error != nil {
			t.Fatalf("unexpected response: %+v", resp)
		}
		result := resp.Result.(map[string]interface{})
		info := result["serverInfo"].(map[string]interface{})
		if info["name"] != ServerName || info["version"] != "1.2.3" {
			t.Errorf("serverInfo = %v", info)
		}
	})

	t.Run("initialized notification", func(t *testing.T) {
		if resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
			t.Errorf("expected no response, got %+v", resp)
		}
	})

	t.Run("ping", func(t *testing.T) {
		resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: "p", Method: "ping"})
		if resp == nil || resp.Error != nil || resp.ID != "p" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		resp := s.handleRequest(ctx, &MCPRequest{JSONRPC: "2.0", ID: 2, Method: "resources/list"})
		if resp == nil || resp.Error == nil || resp.Error.Code != -32601 {
			t.Errorf("expected method-not-found, got %+v", resp)
		}
	})
}

func TestRun(t *testing.T) {
	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"ping"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	}, "\n")
	var out bytes.Buffer

	s := quietServer(WithIO(strings.NewReader(in), &out))
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	dec := json.NewDecoder(&out)
	var ids []float64
	for dec.More() {
		var resp MCPResponse
		if err := dec.Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		ids = append(ids, resp.ID.(float64))
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("response ids = %v, want [1 2]", ids)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	s := quietServer(WithIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out))
	if err := s.Run(ctx); err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("wrote %q after cancellation", out.String())
	}
}

func TestToolDefinitions(t *testing.T) {
	want := map[string]bool{
		"label_check":      false,
		"mask_generate":    false,
		"regions_extract":  false,
		"masks_score":      false,
		"image_dimensions": false,
	}
	for _, tool := range GetToolDefinitions() {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}
		want[tool.Name] = true
		if tool.Description == "" {
			t.Errorf("tool %q has no description", tool.Name)
		}
		if tool.InputSchema["type"] != "object" {
			t.Errorf("tool %q schema type = %v", tool.Name, tool.InputSchema["type"])
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not listed", name)
		}
	}

	resp := quietServer().handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	tools := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if len(tools) != len(want) {
		t.Errorf("tools/list returned %d tools, want %d", len(tools), len(want))
	}
}
