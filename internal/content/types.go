// Package content supplies the read-only conversational material the
// dialogue engine draws on: topic keywords, validation phrases, deep
// inquiries, reflection suggestions and motivational quotes.
//
// The engine depends only on the Provider interface. Static is the in-memory
// implementation, built from a Pack that is either the embedded default
// (builtin.yaml) or a user-supplied YAML file. Swapping packs localizes or
// rewrites the conversation without touching engine logic.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider is the content lookup surface consumed by the dialogue core.
// A missing entry is reported with ok=false (or an empty slice), never an
// error: callers fall back to generic phrasing.
type Provider interface {
	// Topics returns topic ids in registration order.
	Topics() []string
	KeywordsFor(topic string) []string
	ValidationFor(topic string) (string, bool)
	// InquiriesFor returns the ordered deep-inquiry bank for a topic.
	InquiriesFor(topic string) []string
	SuggestionFor(topic string) (string, bool)
	RandomMotivationalQuote() string
}

// Topic is one entry of a content pack.
type Topic struct {
	ID         string   `yaml:"id" json:"id" jsonschema:"required,minLength=1,description=Topic identifier shown to the user (e.g. 'masalah hubungan')"`
	Keywords   []string `yaml:"keywords" json:"keywords" jsonschema:"required,minItems=1,description=Lower-case surface keywords matched by substring"`
	Validation string   `yaml:"validation,omitempty" json:"validation,omitempty" jsonschema:"description=Empathic validation given once per activation"`
	Inquiries  []string `yaml:"inquiries,omitempty" json:"inquiries,omitempty" jsonschema:"description=Ordered open questions asked without repetition"`
	Suggestion string   `yaml:"suggestion,omitempty" json:"suggestion,omitempty" jsonschema:"description=Reflection suggestion delivered once per session"`
}

// Pack is the serialized form of a content set.
type Pack struct {
	Topics []Topic  `yaml:"topics" json:"topics" jsonschema:"required,minItems=1"`
	Quotes []string `yaml:"quotes" json:"quotes" jsonschema:"required,minItems=1,description=Motivational quotes used in the closing reply"`
}

//go:embed builtin.yaml
var builtinPack []byte

// DefaultPack returns a fresh copy of the embedded content pack.
func DefaultPack() *Pack {
	p, err := ParsePack(builtinPack)
	if err != nil {
		// The embedded pack is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("content: embedded pack: %v", err))
	}
	return p
}

// ParsePack decodes and validates a YAML content pack.
func ParsePack(data []byte) (*Pack, error) {
	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing content pack: %w", err)
	}
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPack reads a content pack from a YAML file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("content pack %q not found", path)
		}
		return nil, fmt.Errorf("reading content pack: %w", err)
	}
	p, err := ParsePack(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Validate reports structural problems: empty or duplicate topic ids,
// topics without keywords, and a pack without quotes.
func (p *Pack) Validate() error {
	if len(p.Topics) == 0 {
		return fmt.Errorf("content pack has no topics")
	}
	seen := make(map[string]bool, len(p.Topics))
	for i, t := range p.Topics {
		if t.ID == "" {
			return fmt.Errorf("topic #%d has an empty id", i+1)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate topic id %q", t.ID)
		}
		seen[t.ID] = true
		if len(t.Keywords) == 0 {
			return fmt.Errorf("topic %q has no keywords", t.ID)
		}
	}
	if len(p.Quotes) == 0 {
		return fmt.Errorf("content pack has no motivational quotes")
	}
	return nil
}

// normalize trims ids and lower-cases keywords so matching stays a plain
// case-insensitive substring test. Blank keywords are dropped: an empty
// keyword would match every text.
func (p *Pack) normalize() {
	for i := range p.Topics {
		t := &p.Topics[i]
		t.ID = strings.TrimSpace(t.ID)
		kws := t.Keywords[:0]
		for _, kw := range t.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		t.Keywords = kws
	}
}
