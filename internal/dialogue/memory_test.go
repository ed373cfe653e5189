package dialogue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopicMemory_ActivateResetsOnSwitch(t *testing.T) {
	m := newTopicMemory()

	if !m.Activate("a") {
		t.Fatal("first activation should report a switch")
	}
	m.RecordExploration()
	m.RecordExploration()
	m.MarkValidated()
	m.MarkAsked("q1")

	if m.Activate("a") {
		t.Error("re-activating the same topic should not switch")
	}
	if m.Explorations() != 2 || !m.IsValidated() || !m.WasAsked("q1") {
		t.Error("same-topic activation must keep counters")
	}

	if !m.Activate("b") {
		t.Fatal("switch not reported")
	}
	if m.Explorations() != 0 || m.IsValidated() || m.WasAsked("q1") {
		t.Errorf("switch did not reset: %+v", m.Snapshot())
	}
}

func TestTopicMemory_ReflectedSurvivesSwitchAndClear(t *testing.T) {
	m := newTopicMemory()
	m.Activate("a")
	m.MarkReflected("a")
	m.Activate("b")
	m.Clear()

	if !m.IsReflected("a") {
		t.Error("reflected flag lost")
	}
	if m.IsReflected("b") {
		t.Error("b should not be reflected")
	}
}

func TestTopicMemory_RecordExplorationNeedsActiveTopic(t *testing.T) {
	m := newTopicMemory()
	m.RecordExploration()
	if m.Explorations() != 0 {
		t.Errorf("explorations = %d without a topic", m.Explorations())
	}
}

func TestTopicMemory_Snapshot(t *testing.T) {
	m := newTopicMemory()
	m.MarkReflected("zeta")
	m.MarkReflected("alpha")
	m.Activate("mid")
	m.RecordExploration()
	m.MarkAsked("q")

	want := TopicState{
		Active:       "mid",
		Explorations: 1,
		Asked:        1,
		Reflected:    []string{"alpha", "zeta"},
	}
	if diff := cmp.Diff(want, m.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
