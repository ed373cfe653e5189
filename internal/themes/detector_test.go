package themes

import (
	"strings"
	"testing"

	"github.com/HendryAvila/curhat/internal/content"
	"github.com/google/go-cmp/cmp"
)

// fakeSource is a minimal KeywordSource with explicit registration order.
type fakeSource struct {
	order    []string
	keywords map[string][]string
}

func (f fakeSource) Topics() []string                  { return f.order }
func (f fakeSource) KeywordsFor(topic string) []string { return f.keywords[topic] }

func newDefaultDetector() *Detector {
	return New(content.NewDefault())
}

func TestOrder_MoreKeywordsFirstThenRegistration(t *testing.T) {
	d := newDefaultDetector()
	want := []string{
		"masalah hubungan", // 11
		"stres akademik",   // 10
		"self-esteem rendah",
		"kelelahan",
		"kecemasan",
		"kesedihan",
		"kebingungan",
		"kemarahan",
	}
	if diff := cmp.Diff(want, d.Order()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_Examples(t *testing.T) {
	d := newDefaultDetector()

	tests := []struct {
		text string
		want []string
	}{
		{"aku baru putus cinta", []string{"masalah hubungan"}},
		{"AKU LELAH", []string{"kelelahan"}},
		{"aku capek banget sama kuliah", []string{"stres akademik", "kelelahan"}},
		// "marah" contains the kebingungan keyword "arah": substring matching is literal.
		{"pacarku marah-marah terus", []string{"masalah hubungan", "kebingungan", "kemarahan"}},
		{"aku sedih banget", []string{"kesedihan"}},
		{"cuacanya cerah", nil},
		{"", nil},
		{"   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := d.Detect(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Detect(%q) mismatch (-want +got):\n%s", tt.text, diff)
			}
		})
	}
}

// For any topic T with keyword set K, Detect(text) contains T iff text
// contains at least one keyword of K, case-insensitively.
func TestDetect_ContainsTopicIffKeywordPresent(t *testing.T) {
	src := content.NewDefault()
	d := New(src)

	texts := []string{
		"Aku GAGAL lagi di ujian",
		"rasanya hampa dan aku overthinking",
		"ga ada energi buat apa-apa",
		"bosku bikin dongkol",
		"hari ini biasa saja",
		"Dia DIPUTUSIN pacarnya dan aku bimbang",
	}

	for _, text := range texts {
		got := map[string]bool{}
		for _, topic := range d.Detect(text) {
			got[topic] = true
		}
		lower := strings.ToLower(text)
		for _, topic := range src.Topics() {
			want := false
			for _, kw := range src.KeywordsFor(topic) {
				if strings.Contains(lower, kw) {
					want = true
				}
			}
			if got[topic] != want {
				t.Errorf("Detect(%q) contains %q = %v, want %v", text, topic, got[topic], want)
			}
		}
	}
}

func TestDetect_Deduplicated(t *testing.T) {
	d := New(fakeSource{
		order:    []string{"a", "a", "b"},
		keywords: map[string][]string{"a": {"x"}, "b": {"y"}},
	})
	got := d.Detect("x y x")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDetect_TiesKeepRegistrationOrder(t *testing.T) {
	d := New(fakeSource{
		order: []string{"first", "second", "broad"},
		keywords: map[string][]string{
			"first":  {"aa", "bb"},
			"second": {"aa", "cc"},
			"broad":  {"aa", "bb", "cc", "dd"},
		},
	})

	for i := 0; i < 10; i++ {
		got := d.Detect("aa")
		if diff := cmp.Diff([]string{"broad", "first", "second"}, got); diff != "" {
			t.Fatalf("run %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestNew_SkipsTopicsWithoutKeywords(t *testing.T) {
	d := New(fakeSource{
		order:    []string{"empty", "real"},
		keywords: map[string][]string{"empty": {""}, "real": {"Kangen"}},
	})
	if diff := cmp.Diff([]string{"real"}, d.Order()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got, ok := d.Primary("aku kangen"); !ok || got != "real" {
		t.Errorf("Primary = %q, %v; want real, true (keywords are lower-cased)", got, ok)
	}
}

func TestPrimary_NoMatch(t *testing.T) {
	d := newDefaultDetector()
	if got, ok := d.Primary("halo"); ok {
		t.Errorf("Primary(halo) = %q, want no match", got)
	}
}
