package summary

import (
	"strings"
	"testing"

	"github.com/HendryAvila/curhat/internal/content"
	"github.com/HendryAvila/curhat/internal/templates"
	"github.com/HendryAvila/curhat/internal/themes"
	"github.com/google/go-cmp/cmp"
)

func newSummarizer(t *testing.T) *Summarizer {
	t.Helper()
	src := content.NewDefault()
	return New(themes.New(src), src, templates.MustRenderer())
}

// noSuggestions simulates a content pack without suggestion text.
type noSuggestions struct{}

func (noSuggestions) SuggestionFor(string) (string, bool) { return "", false }

func TestSummarize_ExcludesFirstTurn(t *testing.T) {
	s := newSummarizer(t)

	// The first text mentions "kuliah" but must not count.
	d := s.Summarize([]string{"aku kuliah di sini", "aku lelah"})
	if diff := cmp.Diff([]string{"kelelahan"}, d.Themes); diff != "" {
		t.Errorf("themes mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_EngagementGate(t *testing.T) {
	s := newSummarizer(t)

	five := []string{"halo", "a", "b", "c", "d"}
	if s.Summarize(five).Engaged {
		t.Error("5 turns should not be engaged")
	}
	six := append(five, "e")
	if !s.Summarize(six).Engaged {
		t.Error("6 turns should be engaged")
	}
}

func TestSummarize_OneSuggestionPerTheme(t *testing.T) {
	s := newSummarizer(t)

	d := s.Summarize([]string{"halo", "aku stres karena skripsi", "dan capek", "skripsi lagi"})
	if diff := cmp.Diff([]string{"stres akademik", "kelelahan"}, d.Themes); diff != "" {
		t.Fatalf("themes mismatch (-want +got):\n%s", diff)
	}
	if len(d.Suggestions) != 2 {
		t.Fatalf("suggestions = %d, want 2", len(d.Suggestions))
	}
	if d.Suggestions[0].Theme != "stres akademik" {
		t.Errorf("first suggestion theme = %q", d.Suggestions[0].Theme)
	}
}

func TestSummarize_GenericSuggestionOnContentMiss(t *testing.T) {
	src := content.NewDefault()
	s := New(themes.New(src), noSuggestions{}, templates.MustRenderer())

	d := s.Summarize([]string{"halo", "aku cemas"})
	if len(d.Suggestions) != 1 || d.Suggestions[0].Text != GenericSuggestion {
		t.Errorf("Suggestions = %+v, want one generic line", d.Suggestions)
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	s := newSummarizer(t)
	history := []string{"halo", "aku sedih", "pacarku pergi", "aku cemas", "ujian besok", "capek"}

	first, err := s.Render(s.Summarize(history))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := s.Render(s.Summarize(history))
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("render %d differs:\n%s\n---\n%s", i, first, again)
		}
	}
}

func TestRender_NoThemes(t *testing.T) {
	s := newSummarizer(t)

	out, err := s.Render(s.Summarize([]string{"halo", "hari ini biasa saja"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Kita telah membahas banyak hal penting") {
		t.Errorf("expected generic themes sentence, got:\n%s", out)
	}
}

func TestRender_EmptyHistory(t *testing.T) {
	s := newSummarizer(t)

	out, err := s.Render(s.Summarize(nil))
	if err != nil {
		t.Fatal(err)
	}
	if out != EmptyHistory {
		t.Errorf("Render(empty) = %q, want %q", out, EmptyHistory)
	}
}
