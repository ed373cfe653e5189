package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HendryAvila/curhat/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return cfg
}

// rpc sends one JSON-RPC message and returns the encoded response.
func rpc(t *testing.T, s *server.MCPServer, msg string) string {
	t.Helper()
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(data)
}

func listTools(t *testing.T, s *server.MCPServer) string {
	t.Helper()
	rpc(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)
	return rpc(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
}

func TestNew_RegistersEverything(t *testing.T) {
	s, cleanup, err := New(testConfig(t), nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer cleanup()

	tools := listTools(t, s)
	for _, name := range []string{"curhat_start", "curhat_say", "curhat_status", "curhat_end", "curhat_history"} {
		if !strings.Contains(tools, `"`+name+`"`) {
			t.Errorf("tool %s not registered: %s", name, tools)
		}
	}

	prompts := rpc(t, s, `{"jsonrpc":"2.0","id":3,"method":"prompts/list"}`)
	for _, name := range []string{"curhat-start", "curhat-status"} {
		if !strings.Contains(prompts, name) {
			t.Errorf("prompt %s not registered", name)
		}
	}

	res := rpc(t, s, `{"jsonrpc":"2.0","id":4,"method":"resources/list"}`)
	for _, uri := range []string{"curhat://glossary/distortions", "curhat://glossary/techniques", "curhat://content/topics"} {
		if !strings.Contains(res, uri) {
			t.Errorf("resource %s not registered", uri)
		}
	}
}

func TestNew_TranscriptFailureDisablesHistoryOnly(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(blocker, "sub")

	core, logs := observer.New(zap.WarnLevel)
	s, cleanup, err := New(cfg, zap.New(core))
	if err != nil {
		t.Fatalf("transcript failure must not fail New: %v", err)
	}
	defer cleanup()

	tools := listTools(t, s)
	if strings.Contains(tools, "curhat_history") {
		t.Error("history registered without a transcript")
	}
	if !strings.Contains(tools, "curhat_say") {
		t.Error("conversation tools missing")
	}
	if logs.FilterMessage("transcript disabled").Len() != 1 {
		t.Error("transcript failure not logged")
	}
}

func TestNew_TranscriptOff(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcript = false

	rt, err := NewRuntime(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	if rt.Transcript != nil {
		t.Error("transcript opened while disabled")
	}
}

func TestNew_BadContentPackFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContentPath = filepath.Join(t.TempDir(), "missing.yaml")

	_, cleanup, err := New(cfg, nil)
	if err == nil {
		t.Fatal("expected error for missing content pack")
	}
	if cleanup == nil {
		t.Fatal("cleanup must be non-nil")
	}
	cleanup()
}

func TestRuntime_UsesConfiguredPackAndThreshold(t *testing.T) {
	pack := `topics:
  - id: rindu
    keywords: [kangen]
    validation: Kangen itu berat.
quotes:
  - Satu langkah kecil.
`
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(pack), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t)
	cfg.ContentPath = path
	cfg.SuggestionThreshold = 7

	rt, err := NewRuntime(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()
	rt.Close() // idempotent

	if rt.Engine.Threshold() != 7 {
		t.Errorf("Threshold = %d, want 7", rt.Engine.Threshold())
	}
	if len(rt.Pack.Topics) != 1 || rt.Pack.Topics[0].ID != "rindu" {
		t.Errorf("pack = %+v", rt.Pack.Topics)
	}

	reply, err := rt.Registry.Start(context.Background(), "Rani")
	if err != nil {
		t.Fatal(err)
	}
	got, err := rt.Registry.Say(context.Background(), reply.SessionID, "aku kangen rumah")
	if err != nil {
		t.Fatal(err)
	}
	if got.Topic != "rindu" || !strings.HasPrefix(got.Text, "Kangen itu berat.") {
		t.Errorf("reply = %+v", got)
	}
}
