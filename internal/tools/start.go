package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartTool handles the curhat_start MCP tool.
type StartTool struct {
	conversations Conversations
}

// NewStartTool creates a StartTool.
func NewStartTool(c Conversations) *StartTool {
	return &StartTool{conversations: c}
}

// Definition returns the MCP tool definition for registration.
func (t *StartTool) Definition() mcp.Tool {
	return mcp.NewTool("curhat_start",
		mcp.WithDescription(
			"Start a new supportive conversation. Returns a greeting and the `session_id` "+
				"to pass to `curhat_say`, `curhat_status` and `curhat_end`.",
		),
		mcp.WithString("user_name",
			mcp.Description("How the user wants to be addressed. Defaults to 'User'."),
		),
	)
}

// Handle processes the curhat_start tool call.
func (t *StartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reply, err := t.conversations.Start(ctx, req.GetString("user_name", ""))
	if err != nil {
		return nil, fmt.Errorf("starting conversation: %w", err)
	}
	return mcp.NewToolResultText(formatReply(reply)), nil
}
