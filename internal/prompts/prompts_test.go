package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(result.Messages))
	}
	msg := result.Messages[0]
	if msg.Role != mcp.RoleUser {
		t.Errorf("role = %q", msg.Role)
	}
	tc, ok := msg.Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", msg.Content)
	}
	return tc.Text
}

func TestStartPrompt(t *testing.T) {
	p := NewStartPrompt()
	if def := p.Definition(); def.Name != "curhat-start" {
		t.Errorf("Name = %q", def.Name)
	}

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{"named", map[string]string{"user_name": "Rani"}, "user_name='Rani'"},
		{"blank name", map[string]string{"user_name": ""}, "user_name='User'"},
		{"no args", nil, "user_name='User'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args
			result, err := p.Handle(context.Background(), req)
			if err != nil {
				t.Fatal(err)
			}
			text := promptText(t, result)
			if !strings.Contains(text, tt.want) || !strings.Contains(text, "`curhat_say`") {
				t.Errorf("prompt = %q", text)
			}
		})
	}
}

func TestStatusPrompt(t *testing.T) {
	p := NewStatusPrompt()
	if def := p.Definition(); def.Name != "curhat-status" {
		t.Errorf("Name = %q", def.Name)
	}

	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"session_id": "abc"}
	result, err := p.Handle(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if text := promptText(t, result); !strings.Contains(text, "session_id='abc'") {
		t.Errorf("prompt = %q", text)
	}
}
