package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/curhat/internal/transcript"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// HistoryTool handles the curhat_history MCP tool. It reads the transcript
// store and is only registered when the store opened.
type HistoryTool struct {
	history History
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(h History) *HistoryTool {
	return &HistoryTool{history: h}
}

// Definition returns the MCP tool definition for registration.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("curhat_history",
		mcp.WithDescription(
			"Read past conversations from the transcript. With `session_id`, returns that "+
				"conversation turn by turn. With `query`, searches what was said. Otherwise "+
				"lists the most recent conversations with overall statistics.",
		),
		mcp.WithString("session_id",
			mcp.Description("Show every turn of this conversation."),
		),
		mcp.WithString("query",
			mcp.Description("Full-text search over user messages and replies."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default 10, max 50)."),
		),
	)
}

// Handle processes the curhat_history tool call.
func (t *HistoryTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if id := strings.TrimSpace(req.GetString("session_id", "")); id != "" {
		return t.session(id)
	}
	if q := strings.TrimSpace(req.GetString("query", "")); q != "" {
		return t.search(q, limit)
	}
	return t.recent(limit)
}

func (t *HistoryTool) session(id string) (*mcp.CallToolResult, error) {
	sess, err := t.history.GetSession(id)
	if err != nil {
		if errors.Is(err, transcript.ErrSessionNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("No transcript for session %q.", id)), nil
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	turns, err := t.history.Turns(id)
	if err != nil {
		return nil, fmt.Errorf("loading turns: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Conversation with %s\n\n", sess.UserName)
	fmt.Fprintf(&sb, "Started %s", sess.StartedAt)
	if sess.EndedAt != nil {
		fmt.Fprintf(&sb, ", ended %s", *sess.EndedAt)
	} else {
		sb.WriteString(", still open")
	}
	sb.WriteString("\n")

	for _, tr := range turns {
		fmt.Fprintf(&sb, "\n### %d. [%s", tr.Seq, tr.Stage)
		if tr.Topic != nil {
			fmt.Fprintf(&sb, " · %s", *tr.Topic)
		}
		sb.WriteString("]\n\n")
		fmt.Fprintf(&sb, "> %s\n\n%s\n", tr.UserText, tr.BotReply)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *HistoryTool) search(query string, limit int) (*mcp.CallToolResult, error) {
	results, err := t.history.Search(query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching transcript: %w", err)
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No turns match %q.", query)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %d turn(s) matching %q\n\n", len(results), query)
	for _, r := range results {
		fmt.Fprintf(&sb, "- `%s` #%d (%s): %s\n", r.SessionID, r.Seq, r.CreatedAt, r.UserText)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (t *HistoryTool) recent(limit int) (*mcp.CallToolResult, error) {
	stats, err := t.history.Stats()
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	sessions, err := t.history.RecentSessions(limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		return mcp.NewToolResultText("No conversations recorded yet."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Recent conversations\n\n")
	fmt.Fprintf(&sb, "%d session(s), %d open, %d turn(s) in total.\n", stats.TotalSessions, stats.OpenSessions, stats.TotalTurns)
	if len(stats.Topics) > 0 {
		parts := make([]string, len(stats.Topics))
		for i, tc := range stats.Topics {
			parts[i] = fmt.Sprintf("%s (%d)", tc.Topic, tc.Sessions)
		}
		fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(parts, ", "))
	}

	sb.WriteString("\n| Session | User | Started | Turns | Status |\n")
	sb.WriteString("|---------|------|---------|-------|--------|\n")
	for _, s := range sessions {
		status := "open"
		if s.EndedAt != nil {
			status = "ended"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %d | %s |\n", s.ID, s.UserName, s.StartedAt, s.TurnCount, status)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
