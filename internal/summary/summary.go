// Package summary composes the closing digest of a conversation.
//
// The digest re-runs theme detection once over the whole history (minus the
// greeting trigger), so it reflects everything the user said rather than
// only the topics that happened to be active.
package summary

import (
	"strings"

	"github.com/HendryAvila/curhat/internal/templates"
)

// EngagementTurns is the history length above which the digest remarks on
// the user's willingness to reflect.
const EngagementTurns = 5

// EmptyHistory is returned when there is nothing to summarize.
const EmptyHistory = "Tidak ada percakapan untuk direfleksikan."

// GenericSuggestion is used for a theme without registered suggestion text.
const GenericSuggestion = "Mengakui perasaan ini adalah langkah pertama yang sangat kuat. Teruslah bersikap baik pada dirimu sendiri."

// Detector finds themes in text.
type Detector interface {
	Detect(text string) []string
}

// Suggestions looks up per-theme suggestion text.
type Suggestions interface {
	SuggestionFor(topic string) (string, bool)
}

// Digest is the structured result of Summarize.
type Digest struct {
	Themes      []string
	Engaged     bool
	Suggestions []templates.SuggestionLine
	TurnCount   int
}

// Summarizer is stateless and deterministic for a given history and content.
type Summarizer struct {
	detector    Detector
	suggestions Suggestions
	renderer    templates.Renderer
}

// New creates a Summarizer.
func New(d Detector, s Suggestions, r templates.Renderer) *Summarizer {
	return &Summarizer{detector: d, suggestions: s, renderer: r}
}

// Summarize builds the digest for the user texts of a conversation in order.
// The first text is the greeting trigger and is excluded from detection but
// still counts toward engagement.
func (s *Summarizer) Summarize(userTexts []string) Digest {
	d := Digest{TurnCount: len(userTexts)}
	if len(userTexts) == 0 {
		return d
	}

	parts := make([]string, 0, len(userTexts)-1)
	for _, t := range userTexts[1:] {
		if t != "" {
			parts = append(parts, strings.ToLower(t))
		}
	}

	d.Themes = s.detector.Detect(strings.Join(parts, " "))
	d.Engaged = len(userTexts) > EngagementTurns

	seen := make(map[string]bool, len(d.Themes))
	for _, theme := range d.Themes {
		if seen[theme] {
			continue
		}
		seen[theme] = true
		text, ok := s.suggestions.SuggestionFor(theme)
		if !ok {
			text = GenericSuggestion
		}
		d.Suggestions = append(d.Suggestions, templates.SuggestionLine{Theme: theme, Text: text})
	}
	return d
}

// Render formats a digest as markdown.
func (s *Summarizer) Render(d Digest) (string, error) {
	if d.TurnCount == 0 {
		return EmptyHistory, nil
	}
	return s.renderer.Render(templates.Digest, templates.DigestData{
		Themes:      d.Themes,
		Engaged:     d.Engaged,
		Suggestions: d.Suggestions,
	})
}
