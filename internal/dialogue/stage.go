package dialogue

import "fmt"

// --- Conversation stage enum ---

// Stage is the phase a session is in. Exactly one is active at a time.
type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageExploration    Stage = "exploration"
	StageReflection     Stage = "reflection"
	StagePostReflection Stage = "post_reflection"
	StageClosing        Stage = "closing"
)

// transitions lists the legal moves out of each stage. Closing is reachable
// from everywhere and leads nowhere.
var transitions = map[Stage][]Stage{
	StageGreeting:       {StageExploration, StageClosing},
	StageExploration:    {StageReflection, StagePostReflection, StageClosing},
	StageReflection:     {StagePostReflection, StageExploration, StageClosing},
	StagePostReflection: {StageExploration, StageClosing},
	StageClosing:        nil,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition returns an error if moving from one stage to another is not
// allowed.
func CanTransition(from, to Stage) error {
	next, ok := transitions[from]
	if !ok {
		return fmt.Errorf("unknown stage %q", from)
	}
	for _, s := range next {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("illegal stage transition %s -> %s", from, to)
}
