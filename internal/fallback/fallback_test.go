package fallback

import (
	"math/rand"
	"strings"
	"sync"
	"testing"
)

func contains(options []string, s string) bool {
	for _, o := range options {
		if o == s {
			return true
		}
	}
	return false
}

func newTestPatterns() *Patterns {
	return New(WithRand(rand.New(rand.NewSource(1))))
}

func TestRespond_Groups(t *testing.T) {
	p := newTestPatterns()

	tests := []struct {
		text string
		pool []string
	}{
		{"Halo semuanya", emotionGroups[0].responses},
		{"makasih ya", emotionGroups[1].responses},
		{"tolong aku", emotionGroups[2].responses},
		{"aku nggak tahu harus apa", emotionGroups[3].responses},
		{"tugasku numpuk", topicGroups[0].responses},
		{"keluarga lagi ribut", topicGroups[1].responses},
		{"rencana ke depan suram", topicGroups[2].responses},
		{"hari ini biasa saja", Empathetic},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := p.Respond(tt.text)
			if !contains(tt.pool, got) {
				t.Errorf("Respond(%q) = %q, not from the expected pool", tt.text, got)
			}
		})
	}
}

func TestRespond_EmotionBeforeTopic(t *testing.T) {
	p := newTestPatterns()
	got := p.Respond("halo, aku mau cerita soal kuliah")
	if !contains(emotionGroups[0].responses, got) {
		t.Errorf("greeting should win over topic keywords, got %q", got)
	}
}

func TestRespond_WordBoundaries(t *testing.T) {
	p := newTestPatterns()
	// "hilang" contains "hi" but not as a word.
	got := p.Respond("semangatku hilang")
	if contains(emotionGroups[0].responses, got) {
		t.Errorf("partial word matched greeting: %q", got)
	}
}

func TestRespond_EchoesReflectionTrigger(t *testing.T) {
	p := newTestPatterns()
	got := p.Respond("Aku merasa sepi")
	if !strings.HasPrefix(got, "Jadi, kamu merasa sepi. ") {
		t.Errorf("Respond = %q, want pronoun echo prefix", got)
	}
}

func TestRespond_NeverEmpty(t *testing.T) {
	p := newTestPatterns()
	for _, text := range []string{"", "   ", "?", "aku ingin"} {
		if got := p.Respond(text); got == "" {
			t.Errorf("Respond(%q) returned empty", text)
		}
	}
}

func TestRespond_DeterministicWithSeed(t *testing.T) {
	a := New(WithRand(rand.New(rand.NewSource(42))))
	b := New(WithRand(rand.New(rand.NewSource(42))))
	for i := 0; i < 20; i++ {
		if x, y := a.Respond("hmm"), b.Respond("hmm"); x != y {
			t.Fatalf("call %d: %q != %q", i, x, y)
		}
	}
}

func TestRespond_ConcurrentUse(t *testing.T) {
	p := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = p.Respond("hmm")
			}
		}()
	}
	wg.Wait()
}

func TestReflectPronouns(t *testing.T) {
	tests := map[string]string{
		"Aku merasa sendirian":         "kamu merasa sendirian",
		"kamu tidak mengerti aku":      "aku tidak mengerti kamu",
		"saya ingin anda mendengar":    "kamu ingin saya mendengar",
		"bukuku hilang":                "bukuku hilang",
		"ku tahu mu peduli":            "mu tahu ku peduli",
		"tidak ada kata ganti di sini": "tidak ada kata ganti di sini",
	}
	for in, want := range tests {
		if got := ReflectPronouns(in); got != want {
			t.Errorf("ReflectPronouns(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShouldReflect(t *testing.T) {
	tests := map[string]bool{
		"Aku merasa lelah":    true,
		"saya ingin pulang":   true,
		"aku mau pulang":      false,
		"kamu merasa gimana?": false,
	}
	for in, want := range tests {
		if got := ShouldReflect(in); got != want {
			t.Errorf("ShouldReflect(%q) = %v, want %v", in, got, want)
		}
	}
}
