package transcript

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNew_OpenErrorIsWrapped(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })

	boom := errors.New("boom")
	openDB = func(string, string) (*sql.DB, error) { return nil, boom }

	_, err := New(Config{DataDir: t.TempDir()})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "transcript: open database") {
		t.Errorf("err = %q, want context prefix", err)
	}
}

func TestSanitizeFTS(t *testing.T) {
	tests := map[string]string{
		"aku lelah":    `"aku" "lelah"`,
		`"kutip" saja`: `"kutip" "saja"`,
		`  "" `:        "",
		"":             "",
	}
	for in, want := range tests {
		if got := sanitizeFTS(in); got != want {
			t.Errorf("sanitizeFTS(%q) = %q, want %q", in, got, want)
		}
	}
}
