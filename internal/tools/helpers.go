// Package tools implements the MCP tool handlers that let a host drive
// conversations.
//
// Each tool is a struct holding its dependencies behind small interfaces and
// exposing Definition() for registration and Handle() as the mcp-go handler.
// User mistakes (unknown session, blank text) come back as tool errors so the
// host model can correct itself; only internal failures are Go errors.
package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/curhat/internal/conversation"
	"github.com/HendryAvila/curhat/internal/transcript"
)

// Conversations is the subset of conversation.Registry the tools need.
type Conversations interface {
	Start(ctx context.Context, userName string) (conversation.Reply, error)
	Say(ctx context.Context, id, text string) (conversation.Reply, error)
	Status(id string) (conversation.Status, error)
	End(ctx context.Context, id string) (conversation.Reply, error)
}

// History is the read side of the transcript store.
type History interface {
	GetSession(id string) (*transcript.Session, error)
	Turns(sessionID string) ([]transcript.Turn, error)
	RecentSessions(limit int) ([]transcript.SessionSummary, error)
	Search(query string, limit int) ([]transcript.SearchResult, error)
	Stats() (*transcript.Stats, error)
}

// userError maps registry sentinels to tool errors. ok is false when err is
// an internal failure the caller should return as a Go error.
func userError(err error, sessionID string) (*mcp.CallToolResult, bool) {
	switch {
	case errors.Is(err, conversation.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf(
			"Session %q not found. It may have ended or expired; start a new one with `curhat_start`.", sessionID)), true
	case errors.Is(err, conversation.ErrEmptyInput):
		return mcp.NewToolResultError("`text` must not be blank."), true
	}
	return nil, false
}

// formatReply renders a bot reply followed by a small state footer the host
// can use to keep track of the session.
func formatReply(r conversation.Reply) string {
	var sb strings.Builder
	sb.WriteString(r.Text)
	sb.WriteString("\n\n---\n")
	fmt.Fprintf(&sb, "session_id: `%s` | stage: %s", r.SessionID, r.Stage)
	if r.Topic != "" {
		fmt.Fprintf(&sb, " | topic: %s", r.Topic)
	}
	if r.Closed {
		sb.WriteString(" | closed")
	}
	return sb.String()
}

func requireSessionID(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	id := strings.TrimSpace(req.GetString("session_id", ""))
	if id == "" {
		return "", mcp.NewToolResultError("`session_id` is required.")
	}
	return id, nil
}
