package dialogue

import "sort"

// TopicMemory tracks the single active topic of a session plus the set of
// topics already reflected on. Only the active topic has counters; they are
// discarded on every switch.
type TopicMemory struct {
	active       string
	explorations int
	validated    bool
	asked        map[string]bool
	reflected    map[string]bool
}

// TopicState is a read-only snapshot of TopicMemory.
type TopicState struct {
	Active       string   `json:"active,omitempty"`
	Explorations int      `json:"explorations"`
	Validated    bool     `json:"validated"`
	Asked        int      `json:"asked"`
	Reflected    []string `json:"reflected,omitempty"`
}

func newTopicMemory() *TopicMemory {
	return &TopicMemory{
		asked:     make(map[string]bool),
		reflected: make(map[string]bool),
	}
}

// Active returns the active topic, or "" when none.
func (m *TopicMemory) Active() string { return m.active }

// Explorations returns how many turns the active topic has been explored.
func (m *TopicMemory) Explorations() int { return m.explorations }

// Activate makes topic the active one. Switching to a different topic resets
// its counters; the reflected set is untouched. Reports whether a switch
// happened.
func (m *TopicMemory) Activate(topic string) bool {
	if topic == m.active {
		return false
	}
	m.active = topic
	m.explorations = 0
	m.validated = false
	m.asked = make(map[string]bool)
	return true
}

// RecordExploration counts one more turn on the active topic.
func (m *TopicMemory) RecordExploration() {
	if m.active != "" {
		m.explorations++
	}
}

func (m *TopicMemory) MarkValidated() { m.validated = true }
func (m *TopicMemory) IsValidated() bool { return m.validated }

func (m *TopicMemory) MarkAsked(q string) { m.asked[q] = true }
func (m *TopicMemory) WasAsked(q string) bool { return m.asked[q] }

// MarkReflected is session-scoped and survives topic switches.
func (m *TopicMemory) MarkReflected(topic string) { m.reflected[topic] = true }
func (m *TopicMemory) IsReflected(topic string) bool { return m.reflected[topic] }

// Clear drops the active topic and its counters.
func (m *TopicMemory) Clear() {
	m.active = ""
	m.explorations = 0
	m.validated = false
	m.asked = make(map[string]bool)
}

// Snapshot returns the current state. Reflected topics are sorted.
func (m *TopicMemory) Snapshot() TopicState {
	st := TopicState{
		Active:       m.active,
		Explorations: m.explorations,
		Validated:    m.validated,
		Asked:        len(m.asked),
	}
	for t := range m.reflected {
		st.Reflected = append(st.Reflected, t)
	}
	sort.Strings(st.Reflected)
	return st
}
