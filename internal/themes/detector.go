// Package themes maps free text to topic ids by keyword containment.
//
// There is no stemming, scoring or negation: a topic matches when any of its
// keywords is a case-insensitive substring of the text. Topics are evaluated
// most-specific-first (more registered keywords first, registration order on
// ties) so the first detected topic is a stable "primary" candidate.
package themes

import (
	"sort"
	"strings"
)

// KeywordSource is the slice of the content provider the detector needs.
type KeywordSource interface {
	Topics() []string
	KeywordsFor(topic string) []string
}

type entry struct {
	topic    string
	keywords []string
}

// Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	entries []entry
}

// New snapshots the keyword tables of src and fixes the evaluation order.
func New(src KeywordSource) *Detector {
	topics := src.Topics()
	entries := make([]entry, 0, len(topics))
	for _, topic := range topics {
		var kws []string
		for _, kw := range src.KeywordsFor(topic) {
			kw = strings.ToLower(kw)
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			continue
		}
		entries = append(entries, entry{topic: topic, keywords: kws})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].keywords) > len(entries[j].keywords)
	})
	return &Detector{entries: entries}
}

// Detect returns every matching topic, deduplicated, in evaluation order.
// No match yields nil.
func (d *Detector) Detect(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	var found []string
	seen := make(map[string]bool)
	for _, e := range d.entries {
		if seen[e.topic] || !containsAny(lower, e.keywords) {
			continue
		}
		seen[e.topic] = true
		found = append(found, e.topic)
	}
	return found
}

// Primary returns the first detected topic.
func (d *Detector) Primary(text string) (string, bool) {
	found := d.Detect(text)
	if len(found) == 0 {
		return "", false
	}
	return found[0], true
}

// Order returns the topic evaluation order.
func (d *Detector) Order() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.topic
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
