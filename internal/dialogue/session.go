package dialogue

import "time"

// Turn is one user utterance and the reply produced for it. Stage and Topic
// record where the session stood after the reply.
type Turn struct {
	UserText  string    `json:"user_text"`
	Timestamp time.Time `json:"timestamp"`
	BotReply  string    `json:"bot_reply"`
	Stage     Stage     `json:"stage"`
	Topic     string    `json:"topic,omitempty"`
}

// Session owns all mutable state of one conversation. It is not safe for
// concurrent use; hosts serialize Process calls per session.
type Session struct {
	ID       string
	UserName string

	stage  Stage
	memory *TopicMemory
	turns  []Turn

	// closedAt is the history length frozen on entering Closing, or -1.
	closedAt int
}

func newSession(userName string) *Session {
	return &Session{
		UserName: userName,
		stage:    StageGreeting,
		memory:   newTopicMemory(),
		closedAt: -1,
	}
}

// Stage returns the current stage.
func (s *Session) Stage() Stage { return s.stage }

// ActiveTopic returns the active topic id, or "" when none.
func (s *Session) ActiveTopic() string { return s.memory.Active() }

// Topic returns a snapshot of the topic memory.
func (s *Session) Topic() TopicState { return s.memory.Snapshot() }

// Closed reports whether a closing reply has been produced.
func (s *Session) Closed() bool { return s.stage == StageClosing }

// Turns returns a copy of the history.
func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// LastTurn returns the most recent turn.
func (s *Session) LastTurn() (Turn, bool) {
	if len(s.turns) == 0 {
		return Turn{}, false
	}
	return s.turns[len(s.turns)-1], true
}

func (s *Session) userTexts(n int) []string {
	if n > len(s.turns) {
		n = len(s.turns)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = s.turns[i].UserText
	}
	return out
}
