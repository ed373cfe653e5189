// Package prompts implements MCP prompt handlers for curhat.
//
// Prompts are user-triggered workflows: they tell the host model which tools
// to call and how to relay the replies, so the user gets the scripted
// supportive conversation rather than the model's own improvisation.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// StartPrompt handles the curhat-start MCP prompt.
type StartPrompt struct{}

// NewStartPrompt creates a StartPrompt.
func NewStartPrompt() *StartPrompt {
	return &StartPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StartPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("curhat-start",
		mcp.WithPromptDescription(
			"Open a safe space to talk about how you feel. The conversation listens, "+
				"validates, asks gentle questions and offers a reflection.",
		),
		mcp.WithArgument("user_name",
			mcp.ArgumentDescription("What should I call you? Default: User"),
		),
	)
}

// Handle processes the curhat-start prompt request.
func (p *StartPrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := "User"
	if args := req.Params.Arguments; args != nil {
		if n, ok := args["user_name"]; ok && n != "" {
			name = n
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Curhat session for %s", name),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I'd like to talk about how I'm feeling. Call me %s.\n\n"+
						"Please:\n"+
						"1. Run `curhat_start` with user_name='%s' and show me the greeting exactly as returned\n"+
						"2. For every message I write, call `curhat_say` with the session_id and my words unchanged\n"+
						"3. Show me each reply verbatim, without the session footer, and do not add advice of your own\n"+
						"4. When I say 'selesai', 'bye' or 'stop', or ask to finish, show the closing summary and stop calling tools\n\n"+
						"Keep the session_id to yourself unless I ask for it.",
					name, name,
				)),
			},
		},
	}, nil
}
