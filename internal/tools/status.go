package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/curhat/internal/templates"
)

// StatusTool handles the curhat_status MCP tool.
type StatusTool struct {
	conversations Conversations
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(c Conversations) *StatusTool {
	return &StatusTool{conversations: c}
}

// Definition returns the MCP tool definition for registration.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("curhat_status",
		mcp.WithDescription(
			"Inspect a live conversation: current stage, active topic, how many turns it "+
				"has been explored and which topics already received a reflection.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by `curhat_start`."),
		),
	)
}

// Handle processes the curhat_status tool call.
func (t *StatusTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireSessionID(req)
	if bad != nil {
		return bad, nil
	}

	st, err := t.conversations.Status(id)
	if err != nil {
		if res, ok := userError(err, id); ok {
			return res, nil
		}
		return nil, fmt.Errorf("reading status: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Conversation `%s`\n\n", st.SessionID)
	fmt.Fprintf(&sb, "| Field | Value |\n|-------|-------|\n")
	fmt.Fprintf(&sb, "| User | %s |\n", st.UserName)
	fmt.Fprintf(&sb, "| Stage | %s |\n", st.Stage)
	topic := "none"
	if st.Topic.Active != "" {
		topic = st.Topic.Active
	}
	fmt.Fprintf(&sb, "| Active topic | %s |\n", topic)
	fmt.Fprintf(&sb, "| Explorations | %d |\n", st.Topic.Explorations)
	fmt.Fprintf(&sb, "| Validated | %t |\n", st.Topic.Validated)
	fmt.Fprintf(&sb, "| Inquiries asked | %d |\n", st.Topic.Asked)
	fmt.Fprintf(&sb, "| Turns | %d |\n", st.Turns)
	fmt.Fprintf(&sb, "| Started | %s |\n", st.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "| Last active | %s |\n", st.LastActive.Format(time.RFC3339))
	fmt.Fprintf(&sb, "| Closed | %t |\n", st.Closed)

	if len(st.Topic.Reflected) > 0 {
		fmt.Fprintf(&sb, "\nAlready reflected on: %s\n", strings.Join(labelsOf(st.Topic.Reflected), ", "))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func labelsOf(topics []string) []string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = templates.Label(t)
	}
	return out
}
