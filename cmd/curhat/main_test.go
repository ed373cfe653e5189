package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/curhat/internal/config"
	"github.com/HendryAvila/curhat/internal/content"
	"github.com/HendryAvila/curhat/internal/conversation"
	"github.com/HendryAvila/curhat/internal/dialogue"
)

// writeConfig points data_dir at a temp dir and clears CURHAT_* overrides.
func writeConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{config.EnvUserName, config.EnvThreshold, config.EnvContent, config.EnvDataDir, config.EnvLogLevel, config.EnvTranscript} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.LogLevel = "error"
	path := filepath.Join(dir, "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// --- chat loop ---

func newLoop(out *bytes.Buffer) *chatLoop {
	return &chatLoop{
		registry:    conversation.New(dialogue.NewEngine(content.NewDefault())),
		defaultName: "User",
		out:         out,
		render:      func(s string) string { return s },
		logger:      zap.NewNop(),
	}
}

func TestChatLoop_FullConversation(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop(&out)

	in := "Rani\n\naku lelah\n   \nselesai\nini tidak dibaca\n"
	if err := loop.run(context.Background(), strings.NewReader(in)); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{
		"Boleh aku tahu namamu?",
		"Bot: Halo Rani!",
		"Rani: ",
		"kelelahan",
		separator + "\nBot: ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "\nBot: ") != 3 {
		t.Errorf("bot replies = %d, want 3 (blank lines skipped):\n%s", strings.Count(got, "\nBot: "), got)
	}
	if loop.registry.Len() != 0 {
		t.Error("conversation not released after closing")
	}
}

func TestChatLoop_DefaultName(t *testing.T) {
	var out bytes.Buffer
	if err := newLoop(&out).run(context.Background(), strings.NewReader("\nbye\n")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Halo User!") {
		t.Errorf("output = %s", out.String())
	}
}

func TestChatLoop_EOFClosesWithSummary(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop(&out)
	if err := loop.run(context.Background(), strings.NewReader("Rani\naku cemas\n")); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, separator+"\nBot: ") || !strings.Contains(got, "kecemasan") {
		t.Errorf("EOF did not produce the closing summary:\n%s", got)
	}
	if loop.registry.Len() != 0 {
		t.Error("conversation not released at EOF")
	}
}

func TestChatLoop_InterruptSaysGoodbye(t *testing.T) {
	var out bytes.Buffer
	loop := newLoop(&out)

	ctx, cancel := context.WithCancel(context.Background())
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	done := make(chan error, 1)
	go func() { done <- loop.run(ctx, r) }()

	if _, err := w.WriteString("Rani\n"); err != nil {
		t.Fatal(err)
	}
	for loop.registry.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Sampai jumpa, Rani! Jaga diri baik-baik!") {
		t.Errorf("output = %s", out.String())
	}
	if loop.registry.Len() != 0 {
		t.Error("conversation not released after interrupt")
	}
}

// --- commands ---

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "curhat vdev\n" {
		t.Errorf("version = %q", out)
	}
}

func TestSchemaCmd(t *testing.T) {
	out, err := execute(t, "", "--config", writeConfig(t), "schema")
	if err != nil {
		t.Fatal(err)
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("schema is not JSON: %v\n%s", err, out)
	}
	if schema["title"] != "Curhat content pack" {
		t.Errorf("title = %v", schema["title"])
	}
}

func TestChatThenHistory(t *testing.T) {
	path := writeConfig(t)

	out, err := execute(t, "Rani\nskripsi bikin pusing\nstop\n", "--config", path, "--plain")
	if err != nil {
		t.Fatalf("chat: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Halo Rani!") {
		t.Errorf("chat output = %s", out)
	}

	out, err = execute(t, "", "--config", path, "history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rani") || !strings.Contains(out, "ended") {
		t.Errorf("history = %s", out)
	}

	out, err = execute(t, "", "--config", path, "history", "--search", "skripsi")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "skripsi bikin pusing") {
		t.Errorf("search = %s", out)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	path := writeConfig(t)
	t.Setenv(config.EnvThreshold, "0")

	if _, err := execute(t, "", "--config", path, "history"); err == nil || !strings.Contains(err.Error(), "suggestion_threshold") {
		t.Errorf("err = %v, want suggestion_threshold error", err)
	}
}
