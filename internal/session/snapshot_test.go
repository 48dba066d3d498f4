package session

import (
	"encoding/json"
	"testing"

	"quiz-runner/internal/domain"
)

func startedState(t *testing.T, n int) *State {
	t.Helper()
	s := newTestState(1)
	s.Load(testDocument(n))
	if err := s.Start(domain.Settings{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := startedState(t, 3)
	if err := s.Answer("Q1", domain.BoolAnswer(true)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	restored := newTestState(2)
	restored.Resume(decoded, decoded.Document)
	if restored.Phase != PhaseActive {
		t.Fatalf("expected active after resume, got %s", restored.Phase)
	}
	if restored.SessionID != s.SessionID {
		t.Fatalf("session id must survive, got %q want %q", restored.SessionID, s.SessionID)
	}
	if restored.Position != 1 {
		t.Fatalf("expected position 1, got %d", restored.Position)
	}
	if got := restored.Answers["Q1"]; got.Kind != domain.AnswerBoolean || !got.Bool {
		t.Fatalf("expected Q1 answer restored, got %+v", got)
	}
	for i, id := range restored.ActiveOrder {
		if id != s.ActiveOrder[i] {
			t.Fatalf("order changed across round trip: %v vs %v", restored.ActiveOrder, s.ActiveOrder)
		}
	}
}

// Resume must be stable under document shrinkage: ids removed from the
// backing document disappear from the order, survivors keep their saved
// relative order.
func TestResumeAfterDocumentShrinks(t *testing.T) {
	s := startedState(t, 4)
	snap := s.Snapshot()

	smaller := testDocument(4)
	smaller.Questions = append(smaller.Questions[:1], smaller.Questions[2:]...) // drop Q2

	restored := newTestState(2)
	restored.Resume(snap, smaller)

	want := []string{"Q1", "Q3", "Q4"}
	if len(restored.ActiveOrder) != len(want) {
		t.Fatalf("expected %v, got %v", want, restored.ActiveOrder)
	}
	for i, id := range want {
		if restored.ActiveOrder[i] != id {
			t.Fatalf("expected %v, got %v", want, restored.ActiveOrder)
		}
	}
}

func TestResumeAppendsNewQuestions(t *testing.T) {
	s := startedState(t, 2)
	snap := s.Snapshot()

	bigger := testDocument(3) // adds Q3
	restored := newTestState(2)
	restored.Resume(snap, bigger)

	want := []string{"Q1", "Q2", "Q3"}
	for i, id := range want {
		if restored.ActiveOrder[i] != id {
			t.Fatalf("expected new ids appended: want %v, got %v", want, restored.ActiveOrder)
		}
	}
}

func TestResumePositionByQuestionID(t *testing.T) {
	s := startedState(t, 3)
	for _, id := range []string{"Q1", "Q2"} {
		if err := s.Answer(id, domain.BoolAnswer(true)); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	snap := s.Snapshot() // currently showing Q3 at position 2

	smaller := testDocument(3)
	smaller.Questions = smaller.Questions[1:] // drop Q1

	restored := newTestState(2)
	restored.Resume(snap, smaller)
	id, ok := restored.CurrentQuestionID()
	if !ok || id != "Q3" {
		t.Fatalf("expected to land on Q3, got %q (order %v, pos %d)", id, restored.ActiveOrder, restored.Position)
	}
}

func TestResumeClampsStalePosition(t *testing.T) {
	s := startedState(t, 3)
	snap := s.Snapshot()
	snap.CurrentQuestionID = "gone"
	snap.CurrentPosition = 99

	restored := newTestState(2)
	restored.Resume(snap, testDocument(2))
	if restored.Position != 1 {
		t.Fatalf("expected clamp to last index 1, got %d", restored.Position)
	}
}

func TestResumeFallsBackToSnapshotDocument(t *testing.T) {
	s := startedState(t, 2)
	snap := s.Snapshot()

	restored := newTestState(2)
	restored.Resume(snap, domain.Document{})
	want := []string{"Q1", "Q2"}
	if len(restored.ActiveOrder) != len(want) {
		t.Fatalf("expected fallback to previously displayed questions, got %v", restored.ActiveOrder)
	}
	for i, id := range want {
		if restored.ActiveOrder[i] != id {
			t.Fatalf("expected %v, got %v", want, restored.ActiveOrder)
		}
	}
}

func TestSnapshotCompletionFlag(t *testing.T) {
	s := startedState(t, 1)
	if s.Snapshot().Completed {
		t.Fatalf("unanswered snapshot must not be completed")
	}
	if err := s.Answer("Q1", domain.BoolAnswer(true)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !s.Snapshot().Completed {
		t.Fatalf("fully answered snapshot must be completed")
	}
}

func TestSnapshotCompletedWhenFinishedEarly(t *testing.T) {
	s := startedState(t, 2)
	if err := s.Answer("Q1", domain.BoolAnswer(true)); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if done, err := s.Finish(func(int) bool { return true }); err != nil || !done {
		t.Fatalf("finish: done=%v err=%v", done, err)
	}
	if !s.Snapshot().Completed {
		t.Fatalf("a finished attempt must never be offered for resume")
	}
}
