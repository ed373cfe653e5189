// Package dialogue is the conversation core: a stage machine that decides,
// per turn, whether to greet, keep exploring the active topic, offer a
// reflection or close with a digest.
//
// The Engine carries only read-only collaborators and can be shared by any
// number of sessions. Everything that changes during a conversation lives in
// a *Session.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HendryAvila/curhat/internal/content"
	"github.com/HendryAvila/curhat/internal/fallback"
	"github.com/HendryAvila/curhat/internal/summary"
	"github.com/HendryAvila/curhat/internal/templates"
	"github.com/HendryAvila/curhat/internal/themes"
)

// DefaultThreshold is how many turns a topic is explored before the engine
// offers a reflection.
const DefaultThreshold = 3

// Fixed replies.
const (
	NeutralPrompt = "Tentu, aku mengerti. Ada hal lain yang ingin kamu ceritakan?"

	PostReflectionMessage = "Baik, aku mengerti. Kita bisa membahas topik lain jika kamu mau. " +
		"Atau, jika kamu merasa sesi ini sudah cukup, aku bisa membantumu merangkum semua yang telah kita bicarakan. " +
		"Cukup katakan **'stop'** atau **'ringkasan'** untuk melihatnya."

	genericValidation = "Aku dengar kamu. Merasa %s itu pasti tidak mudah. Perasaanmu penting dan valid."
)

// terminationPhrases end the conversation from any stage.
var terminationPhrases = map[string]bool{
	"quit":      true,
	"exit":      true,
	"bye":       true,
	"keluar":    true,
	"selesai":   true,
	"stop":      true,
	"ringkasan": true,
}

// endOfTopicPhrases signal the user has nothing more to add on the topic.
var endOfTopicPhrases = map[string]bool{
	"sudah, itu saja": true,
	"cukup":           true,
	"itu aja":         true,
	"ga ada lagi":     true,
	"tidak ada":       true,
	"entahlah":        true,
	"ga tau":          true,
	"tidak bisa":      true,
	"lumayan":         true,
}

// IsTermination reports whether text ends the conversation.
func IsTermination(text string) bool {
	return terminationPhrases[normalize(text)]
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Digester builds and renders the closing digest.
type Digester interface {
	Summarize(userTexts []string) summary.Digest
	Render(d summary.Digest) (string, error)
}

// Engine drives sessions. Safe for concurrent use across sessions.
type Engine struct {
	provider   content.Provider
	detector   *themes.Detector
	summarizer Digester
	fallback   fallback.Responder
	renderer   templates.Renderer
	logger     *zap.Logger
	threshold  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets how many explored turns trigger a reflection.
// Values below 1 are ignored.
func WithThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 1 {
			e.threshold = n
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFallback replaces the responder used when no topic applies.
func WithFallback(r fallback.Responder) Option {
	return func(e *Engine) { e.fallback = r }
}

// WithRenderer replaces the reply templates.
func WithRenderer(r templates.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithSummarizer replaces the closing digest builder.
func WithSummarizer(d Digester) Option {
	return func(e *Engine) { e.summarizer = d }
}

// NewEngine creates an Engine over provider. Collaborators not set by
// options are derived from provider.
func NewEngine(provider content.Provider, opts ...Option) *Engine {
	e := &Engine{
		provider:  provider,
		detector:  themes.New(provider),
		logger:    zap.NewNop(),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.renderer == nil {
		e.renderer = templates.MustRenderer()
	}
	if e.fallback == nil {
		e.fallback = fallback.New()
	}
	if e.summarizer == nil {
		e.summarizer = summary.New(e.detector, provider, e.renderer)
	}
	return e
}

// Threshold returns the configured reflection threshold.
func (e *Engine) Threshold() int { return e.threshold }

// NewSession starts a conversation in the Greeting stage.
func (e *Engine) NewSession(userName string) *Session {
	s := newSession(userName)
	s.ID = uuid.NewString()
	return s
}

// Process records text as a new turn and returns the reply for it.
// It never returns an empty string.
func (e *Engine) Process(s *Session, text string) string {
	s.turns = append(s.turns, Turn{UserText: text, Timestamp: timeNow()})
	idx := len(s.turns) - 1

	norm := normalize(text)
	if terminationPhrases[norm] && s.stage != StageClosing {
		e.moveTo(s, StageClosing)
	}

	var reply string
	switch s.stage {
	case StageGreeting:
		reply = e.greet(s)
	case StageExploration:
		reply = e.explore(s, text, norm)
	case StageReflection:
		reply = e.reflect(s)
	case StagePostReflection:
		reply = e.postReflect(s)
	case StageClosing:
		reply = e.close(s)
	default:
		e.logger.Warn("unknown stage, resetting to exploration",
			zap.String("session", s.ID), zap.String("stage", string(s.stage)))
		s.stage = StageExploration
		reply = e.explore(s, text, norm)
	}

	t := &s.turns[idx]
	t.BotReply = reply
	t.Stage = s.stage
	t.Topic = s.memory.Active()
	return reply
}

// moveTo changes the stage through the transition table. Illegal moves are
// logged and refused.
func (e *Engine) moveTo(s *Session, to Stage) bool {
	if err := CanTransition(s.stage, to); err != nil {
		e.logger.Warn("stage transition refused", zap.String("session", s.ID), zap.Error(err))
		return false
	}
	e.logger.Debug("stage transition",
		zap.String("session", s.ID),
		zap.String("from", string(s.stage)),
		zap.String("to", string(to)))
	s.stage = to
	if to == StageClosing {
		s.closedAt = len(s.turns)
	}
	return true
}

func (e *Engine) greet(s *Session) string {
	e.moveTo(s, StageExploration)
	return e.render(templates.Greeting, templates.GreetingData{UserName: s.UserName},
		"Halo "+s.UserName+"! Silakan ceritakan apa yang sedang kamu rasakan.")
}

func (e *Engine) explore(s *Session, text, norm string) string {
	mem := s.memory

	if endOfTopicPhrases[norm] && mem.Active() != "" {
		if !mem.IsReflected(mem.Active()) {
			e.moveTo(s, StageReflection)
			return e.reflect(s)
		}
		e.moveTo(s, StagePostReflection)
		return e.postReflect(s)
	}

	candidate, ok := e.detector.Primary(text)
	if !ok {
		candidate = mem.Active()
	}
	if candidate != "" {
		if mem.Activate(candidate) {
			e.logger.Debug("topic activated", zap.String("session", s.ID), zap.String("topic", candidate))
		}
		mem.RecordExploration()
	}

	topic := mem.Active()
	if topic != "" && mem.Explorations() >= e.threshold && !mem.IsReflected(topic) {
		e.moveTo(s, StageReflection)
		return e.reflect(s)
	}

	var validation string
	if topic != "" {
		if !mem.IsValidated() {
			validation = e.validationFor(topic)
			mem.MarkValidated()
		}
		if q, ok := e.nextInquiry(topic, mem); ok {
			mem.MarkAsked(q)
			if validation != "" {
				return validation + " " + q
			}
			return q
		}
	}

	reply := e.fallback.Respond(text)
	if reply == "" {
		reply = NeutralPrompt
	}
	// Keep the first validation for the topic even when the fallback answers.
	if validation != "" {
		reply = validation + " " + reply
	}
	return reply
}

func (e *Engine) validationFor(topic string) string {
	if v, ok := e.provider.ValidationFor(topic); ok {
		return v
	}
	return fmt.Sprintf(genericValidation, templates.Label(topic))
}

// nextInquiry returns the first question of the topic's bank not yet asked
// in the current activation.
func (e *Engine) nextInquiry(topic string, mem *TopicMemory) (string, bool) {
	for _, q := range e.provider.InquiriesFor(topic) {
		if !mem.WasAsked(q) {
			return q, true
		}
	}
	return "", false
}

func (e *Engine) reflect(s *Session) string {
	topic := s.memory.Active()
	if topic == "" {
		e.logger.Warn("reflection requested without an active topic", zap.String("session", s.ID))
		e.moveTo(s, StageExploration)
		return NeutralPrompt
	}

	suggestion, ok := e.provider.SuggestionFor(topic)
	if !ok {
		suggestion = summary.GenericSuggestion
	}
	s.memory.MarkReflected(topic)
	e.moveTo(s, StagePostReflection)

	return e.render(templates.Reflection, templates.ReflectionData{Topic: topic, Suggestion: suggestion},
		"**Sebuah Refleksi:** "+suggestion+" Bagaimana menurutmu?")
}

func (e *Engine) postReflect(s *Session) string {
	s.memory.Clear()
	e.moveTo(s, StageExploration)
	return PostReflectionMessage
}

func (e *Engine) close(s *Session) string {
	if s.closedAt < 0 {
		s.closedAt = len(s.turns)
	}

	digest, err := e.summarizer.Render(e.summarizer.Summarize(s.userTexts(s.closedAt)))
	if err != nil {
		e.logger.Error("rendering digest", zap.String("session", s.ID), zap.Error(err))
		digest = summary.EmptyHistory
	}

	quote := e.provider.RandomMotivationalQuote()
	return e.render(templates.Closing, templates.ClosingData{UserName: s.UserName, Digest: digest, Quote: quote},
		digest+"\n\n**\""+quote+"\"**")
}

// render executes a template, falling back to plain text if it fails.
func (e *Engine) render(name templates.Name, data any, plain string) string {
	out, err := e.renderer.Render(name, data)
	if err != nil || out == "" {
		e.logger.Error("rendering reply", zap.String("template", string(name)), zap.Error(err))
		return plain
	}
	return out
}
