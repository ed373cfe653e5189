package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// SayTool handles the curhat_say MCP tool: one user turn in, one reply out.
type SayTool struct {
	conversations Conversations
}

// NewSayTool creates a SayTool.
func NewSayTool(c Conversations) *SayTool {
	return &SayTool{conversations: c}
}

// Definition returns the MCP tool definition for registration.
func (t *SayTool) Definition() mcp.Tool {
	return mcp.NewTool("curhat_say",
		mcp.WithDescription(
			"Send what the user said to an open conversation and get the supportive reply. "+
				"Pass the user's words verbatim. Saying 'selesai', 'bye' or 'stop' closes the "+
				"conversation with a summary; after that every call repeats the summary.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by `curhat_start`."),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The user's message."),
		),
	)
}

// Handle processes the curhat_say tool call.
func (t *SayTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireSessionID(req)
	if bad != nil {
		return bad, nil
	}

	text := strings.TrimSpace(req.GetString("text", ""))
	reply, err := t.conversations.Say(ctx, id, text)
	if err != nil {
		if res, ok := userError(err, id); ok {
			return res, nil
		}
		return nil, fmt.Errorf("processing turn: %w", err)
	}
	return mcp.NewToolResultText(formatReply(reply)), nil
}
