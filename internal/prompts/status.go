package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the curhat-status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("curhat-status",
		mcp.WithPromptDescription("See where the current conversation stands and what was discussed before."),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Conversation to inspect. Default: the one in progress"),
		),
	)
}

// Handle processes the curhat-status prompt request.
func (p *StatusPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "the conversation we are having"
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["session_id"]; ok && id != "" {
			target = fmt.Sprintf("session_id='%s'", id)
		}
	}

	return &mcp.GetPromptResult{
		Description: "Curhat conversation status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please run `curhat_status` for %s.\n\n"+
						"Then:\n"+
						"1. Tell me in one or two gentle sentences which topic we are on and how far along we are\n"+
						"2. Mention topics that already received a reflection\n"+
						"3. If `curhat_history` is available, briefly list my previous conversations",
					target,
				)),
			},
		},
	}, nil
}
