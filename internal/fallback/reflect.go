package fallback

import (
	"regexp"
	"strings"
)

var pronouns = map[string]string{
	"saya": "kamu",
	"aku":  "kamu",
	"ku":   "mu",
	"kamu": "aku",
	"mu":   "ku",
	"anda": "saya",
}

var pronounPattern = regexp.MustCompile(`(?i)\b(saya|aku|ku|kamu|mu|anda)\b`)

var reflectionTriggers = []string{
	"saya merasa",
	"aku merasa",
	"saya ingin",
	"aku ingin",
}

// ReflectPronouns lower-cases text and swaps first and second person
// pronouns in a single pass, so "aku" becomes "kamu" and stays that way.
func ReflectPronouns(text string) string {
	return pronounPattern.ReplaceAllStringFunc(strings.ToLower(text), func(w string) string {
		return pronouns[w]
	})
}

// ShouldReflect reports whether text states a feeling or wish worth echoing.
func ShouldReflect(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range reflectionTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
