package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// EndTool handles the curhat_end MCP tool.
type EndTool struct {
	conversations Conversations
}

// NewEndTool creates an EndTool.
func NewEndTool(c Conversations) *EndTool {
	return &EndTool{conversations: c}
}

// Definition returns the MCP tool definition for registration.
func (t *EndTool) Definition() mcp.Tool {
	return mcp.NewTool("curhat_end",
		mcp.WithDescription(
			"Close a conversation and return its summary: the topics discussed with a "+
				"suggestion for each, a note on engagement when the conversation ran long, "+
				"and a motivational quote. The session id is released afterwards.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by `curhat_start`."),
		),
	)
}

// Handle processes the curhat_end tool call.
func (t *EndTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, bad := requireSessionID(req)
	if bad != nil {
		return bad, nil
	}

	reply, err := t.conversations.End(ctx, id)
	if err != nil {
		if res, ok := userError(err, id); ok {
			return res, nil
		}
		return nil, fmt.Errorf("ending conversation: %w", err)
	}
	return mcp.NewToolResultText(formatReply(reply)), nil
}
