// Package fallback produces a reply when the engine has no topic context.
//
// Matching is deliberately shallow: emotion regexes first, then broad topic
// keywords, then a generic empathetic prompt. It never returns "".
package fallback

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Responder answers a turn that no topic handled.
type Responder interface {
	Respond(text string) string
}

type group struct {
	name      string
	pattern   *regexp.Regexp
	keywords  []string
	responses []string
}

var emotionGroups = []group{
	{
		name:    "greeting",
		pattern: regexp.MustCompile(`\b(hai|halo|hello|hi|selamat)\b`),
		responses: []string{
			"Hai! Gimana kabarnya hari ini?",
			"Hello! Ada yang mau diceritain?",
			"Hai! Apa yang lagi ada di pikiran kamu?",
		},
	},
	{
		name:    "gratitude",
		pattern: regexp.MustCompile(`\b(terima kasih|makasih|thanks|thank you)\b`),
		responses: []string{
			"Sama-sama! Senang bisa dengerin kamu.",
			"Thanks juga udah mau sharing dengan jujur.",
			"Appreciate banget keterbukaan kamu.",
		},
	},
	{
		name:    "help_request",
		pattern: regexp.MustCompile(`\b(bantuan|help|tolong|gimana|bagaimana)\b`),
		responses: []string{
			"Aku di sini untuk dengerin. Cerita aja apa yang kamu rasain.",
			"Mau mulai dari mana? Aku siap mendengarkan.",
			"Apa yang paling berat di pikiran kamu sekarang?",
		},
	},
	{
		name:    "confusion",
		pattern: regexp.MustCompile(`\b(bingung|confused|tidak tahu|nggak tahu|lost)\b`),
		responses: []string{
			"Bingung itu nggak enak ya. Apa yang bikin kamu ngerasa lost?",
			"Wajar kok merasa bingung. Mau cerita situasinya gimana?",
			"Kadang kita butuh waktu untuk clarity. Apa yang paling confusing?",
		},
	},
}

var topicGroups = []group{
	{
		name:     "academic",
		keywords: []string{"kuliah", "kampus", "tugas", "skripsi", "lulus", "study"},
		responses: []string{
			"Kuliah emang challenging ya. Apa yang paling berat sekarang?",
			"Academic life bisa overwhelming. Mau cerita lebih detail?",
			"Gimana experience kamu di kampus selama ini?",
		},
	},
	{
		name:     "relationship",
		keywords: []string{"pacar", "teman", "keluarga", "hubungan", "relationship"},
		responses: []string{
			"Hubungan dengan orang lain emang kompleks. Mau sharing?",
			"Sounds like ada dinamika yang tricky. Cerita dong.",
			"Gimana perasaan kamu tentang hubungan ini?",
		},
	},
	{
		name:     "future",
		keywords: []string{"masa depan", "future", "rencana", "goals", "karier"},
		responses: []string{
			"Mikirin masa depan kadang bikin anxious ya. Apa yang kamu khawatirin?",
			"Planning untuk future itu penting tapi juga bisa stressful. Gimana menurutmu?",
			"Apa yang bikin kamu excited atau worried tentang ke depannya?",
		},
	},
}

// Empathetic is the generic pool used when nothing else matched.
var Empathetic = []string{
	"Hmm, kedengarannya important buat kamu. Mau cerita lebih detail?",
	"Aku pengen ngerti lebih dalam. Bisa explain lebih lanjut?",
	"Sounds like ada story di balik ini. Apa yang paling stick out?",
	"I hear you. Gimana perasaan kamu tentang situasi ini?",
	"Menarik yang kamu bilang. Help me understand better?",
	"Aku ngerasain ada something meaningful di situ. Cerita dong.",
	"That sounds significant. Apa yang bikin ini important buat kamu?",
	"Kayaknya ada complexity di sini. Mau elaborate?",
	"Tell me more. Aku curious sama perspective kamu.",
	"Aku dengerin. Apa yang paling challenging dari situasi ini?",
}

// Patterns is the regex/keyword Responder. Safe for concurrent use.
type Patterns struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures Patterns.
type Option func(*Patterns)

// WithRand injects the random source used to pick among canned replies.
func WithRand(r *rand.Rand) Option {
	return func(p *Patterns) { p.rng = r }
}

// New creates a Patterns responder.
func New(opts ...Option) *Patterns {
	p := &Patterns{}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return p
}

// Respond picks a canned reply for text.
func (p *Patterns) Respond(text string) string {
	lower := strings.ToLower(text)

	for _, g := range emotionGroups {
		if g.pattern.MatchString(lower) {
			return p.pick(g.responses)
		}
	}
	for _, g := range topicGroups {
		for _, kw := range g.keywords {
			if strings.Contains(lower, kw) {
				return p.pick(g.responses)
			}
		}
	}

	prompt := p.pick(Empathetic)
	if ShouldReflect(lower) {
		return "Jadi, " + ReflectPronouns(strings.TrimSpace(lower)) + ". " + prompt
	}
	return prompt
}

func (p *Patterns) pick(options []string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return options[p.rng.Intn(len(options))]
}
