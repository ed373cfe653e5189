// Package resources implements MCP resource handlers for curhat.
//
// Resources expose read-only reference material under curhat:// URIs: the
// glossary of empathic techniques and cognitive distortions, and an overview
// of the content pack the server is running with.
package resources

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/curhat/internal/content"
)

const (
	DistortionsURI = "curhat://glossary/distortions"
	TechniquesURI  = "curhat://glossary/techniques"
	TopicsURI      = "curhat://content/topics"
)

// Handler manages curhat resource endpoints.
type Handler struct {
	pack     *content.Pack
	glossary func() (*content.GlossaryData, error)
}

// NewHandler creates a resource Handler for the given content pack.
func NewHandler(pack *content.Pack) *Handler {
	return &Handler{pack: pack, glossary: content.Glossary}
}

// DistortionsResource returns the MCP resource definition for cognitive distortions.
func (h *Handler) DistortionsResource() mcp.Resource {
	return mcp.NewResource(
		DistortionsURI,
		"Cognitive Distortions",
		mcp.WithResourceDescription("Common thinking traps, each with an example and a reframing question"),
		mcp.WithMIMEType("application/json"),
	)
}

// TechniquesResource returns the MCP resource definition for empathic techniques.
func (h *Handler) TechniquesResource() mcp.Resource {
	return mcp.NewResource(
		TechniquesURI,
		"Empathic Communication Techniques",
		mcp.WithResourceDescription("The listening techniques the conversation is built on and when to use each"),
		mcp.WithMIMEType("application/json"),
	)
}

// TopicsResource returns the MCP resource definition for the content pack overview.
func (h *Handler) TopicsResource() mcp.Resource {
	return mcp.NewResource(
		TopicsURI,
		"Conversation Topics",
		mcp.WithResourceDescription("Topics the conversation recognizes, their keywords and how much material each has"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleDistortions returns the cognitive distortion glossary as JSON.
func (h *Handler) HandleDistortions(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g, err := h.glossary()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, g.Distortions)
}

// HandleTechniques returns the empathic technique glossary as JSON.
func (h *Handler) HandleTechniques(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g, err := h.glossary()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonResource(req.Params.URI, g.Techniques)
}

type topicView struct {
	ID            string   `json:"id"`
	Keywords      []string `json:"keywords"`
	Inquiries     int      `json:"inquiries"`
	HasValidation bool     `json:"has_validation"`
	HasSuggestion bool     `json:"has_suggestion"`
}

type topicsView struct {
	Topics []topicView `json:"topics"`
	Quotes int         `json:"quotes"`
}

// HandleTopics returns an overview of the loaded content pack as JSON.
func (h *Handler) HandleTopics(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.pack == nil {
		return errorResource(req.Params.URI, "no content pack loaded"), nil
	}

	view := topicsView{Topics: make([]topicView, 0, len(h.pack.Topics)), Quotes: len(h.pack.Quotes)}
	for _, t := range h.pack.Topics {
		view.Topics = append(view.Topics, topicView{
			ID:            t.ID,
			Keywords:      t.Keywords,
			Inquiries:     len(t.Inquiries),
			HasValidation: t.Validation != "",
			HasSuggestion: t.Suggestion != "",
		})
	}
	res, err := jsonResource(req.Params.URI, view)
	if err != nil {
		return nil, fmt.Errorf("topics: %w", err)
	}
	return res, nil
}
