// Package templates renders the composed bot replies from embedded
// text/template files.
//
// Only the structured replies live here (greeting, reflection, digest,
// closing). Fixed one-line messages stay next to the code that emits them.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"
)

//go:embed *.tmpl
var files embed.FS

// Name identifies a template file.
type Name string

const (
	Greeting   Name = "greeting.tmpl"
	Reflection Name = "reflection.tmpl"
	Digest     Name = "digest.tmpl"
	Closing    Name = "closing.tmpl"
)

// Renderer renders a named template with the given data.
type Renderer interface {
	Render(name Name, data any) (string, error)
}

// GreetingData feeds greeting.tmpl.
type GreetingData struct {
	UserName string
}

// ReflectionData feeds reflection.tmpl.
type ReflectionData struct {
	Topic      string
	Suggestion string
}

// SuggestionLine is one per-theme line of the digest.
type SuggestionLine struct {
	Theme string
	Text  string
}

// DigestData feeds digest.tmpl.
type DigestData struct {
	Themes      []string
	Engaged     bool
	Suggestions []SuggestionLine
}

// ClosingData feeds closing.tmpl. Digest is already rendered.
type ClosingData struct {
	UserName string
	Digest   string
	Quote    string
}

// TemplateRenderer is the embedded-file Renderer. Safe for concurrent use.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("curhat").Funcs(funcs).ParseFS(files, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for package-level defaults; the templates are
// compiled into the binary so a parse failure is a build defect.
func MustRenderer() *TemplateRenderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named template. Surrounding whitespace is trimmed.
func (r *TemplateRenderer) Render(name Name, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, string(name), data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var funcs = template.FuncMap{
	"label":      Label,
	"labels":     labels,
	"lowerFirst": lowerFirst,
}

// Label turns a topic id into display text ("self_esteem" → "self esteem").
func Label(topic string) string {
	return strings.ReplaceAll(topic, "_", " ")
}

func labels(topics []string) string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = Label(t)
	}
	return strings.Join(out, ", ")
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
