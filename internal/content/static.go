package content

import (
	"math/rand"
	"sync"
	"time"
)

// Static is the in-memory Provider over a Pack. It is safe for concurrent
// use: lookups are read-only and the random source is guarded.
type Static struct {
	order  []string
	topics map[string]Topic
	quotes []string

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Static provider.
type Option func(*Static)

// WithRand injects the random source used for quote selection. Tests pass a
// seeded source to make closing replies deterministic.
func WithRand(r *rand.Rand) Option {
	return func(s *Static) { s.rnd = r }
}

// NewStatic builds a provider from a validated pack.
func NewStatic(p *Pack, opts ...Option) *Static {
	s := &Static{
		order:  make([]string, 0, len(p.Topics)),
		topics: make(map[string]Topic, len(p.Topics)),
		quotes: append([]string(nil), p.Quotes...),
	}
	for _, t := range p.Topics {
		s.order = append(s.order, t.ID)
		s.topics[t.ID] = t
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// NewDefault is NewStatic over the embedded pack.
func NewDefault(opts ...Option) *Static {
	return NewStatic(DefaultPack(), opts...)
}

// Topics implements Provider.
func (s *Static) Topics() []string {
	return append([]string(nil), s.order...)
}

// KeywordsFor implements Provider.
func (s *Static) KeywordsFor(topic string) []string {
	return append([]string(nil), s.topics[topic].Keywords...)
}

// ValidationFor implements Provider.
func (s *Static) ValidationFor(topic string) (string, bool) {
	v := s.topics[topic].Validation
	return v, v != ""
}

// InquiriesFor implements Provider.
func (s *Static) InquiriesFor(topic string) []string {
	return append([]string(nil), s.topics[topic].Inquiries...)
}

// SuggestionFor implements Provider.
func (s *Static) SuggestionFor(topic string) (string, bool) {
	v := s.topics[topic].Suggestion
	return v, v != ""
}

// RandomMotivationalQuote implements Provider.
func (s *Static) RandomMotivationalQuote() string {
	if len(s.quotes) == 0 {
		return ""
	}
	s.mu.Lock()
	i := s.rnd.Intn(len(s.quotes))
	s.mu.Unlock()
	return s.quotes[i]
}

// Quotes returns every configured quote.
func (s *Static) Quotes() []string {
	return append([]string(nil), s.quotes...)
}
