package session

import (
	"time"

	"quiz-runner/internal/domain"
)

// Snapshot is the serializable projection of a session, sufficient for full
// reconstruction. The persistence store owns the durable copy; the live State
// may be ahead of disk between saves.
type Snapshot struct {
	SessionID         string                   `json:"sessionId"`
	Document          domain.Document          `json:"document"`
	Settings          domain.Settings          `json:"settings"`
	Answers           map[string]domain.Answer `json:"answers"`
	ActiveOrder       []string                 `json:"activeOrder"`
	CurrentQuestionID string                   `json:"currentQuestionId"`
	CurrentPosition   int                      `json:"currentPosition"`
	Completed         bool                     `json:"completed"`
	Timestamp         time.Time                `json:"timestamp"`
}

// Snapshot projects the live state into its persisted shape.
func (s *State) Snapshot() Snapshot {
	currentID, _ := s.CurrentQuestionID()
	answers := make(map[string]domain.Answer, len(s.Answers))
	for id, a := range s.Answers {
		answers[id] = a
	}
	order := make([]string, len(s.ActiveOrder))
	copy(order, s.ActiveOrder)
	// An attempt finished early (unanswered questions confirmed away) is
	// still done: it must never be offered for resume.
	completed := s.Completed() || s.Phase == PhaseResults
	return Snapshot{
		SessionID:         s.SessionID,
		Document:          s.Document,
		Settings:          s.Settings,
		Answers:           answers,
		ActiveOrder:       order,
		CurrentQuestionID: currentID,
		CurrentPosition:   s.Position,
		Completed:         completed,
		Timestamp:         s.now(),
	}
}

// Resume reconstructs an in-progress attempt from a snapshot against the
// current document (the caller passes snap.Document when the underlying file
// is unchanged or unavailable).
//
// The saved order wins: saved ids that still exist keep their saved relative
// position, ids new to the current document are appended in document order,
// and ids that no longer exist are dropped. An entirely unusable saved order
// falls back to the previously displayed questions verbatim. The position is
// restored by locating the previously shown question id; failing that, the
// raw saved index clamped into range; an empty order resets to 0.
func (s *State) Resume(snap Snapshot, doc domain.Document) {
	s.Document = doc
	s.Settings = snap.Settings
	s.SessionID = snap.SessionID
	s.LastSavedAt = snap.Timestamp

	s.Answers = make(map[string]domain.Answer, len(snap.Answers))
	for id, a := range snap.Answers {
		s.Answers[id] = a
	}

	s.ActiveOrder = mergeOrder(snap.ActiveOrder, doc.QuestionIDs())
	if len(s.ActiveOrder) == 0 {
		// Saved order unusable against this document: show what the user saw
		// before, straight from the snapshot's own document.
		s.ActiveOrder = snap.Document.QuestionIDs()
	}

	s.Position = restorePosition(snap, s.ActiveOrder)
	s.Phase = PhaseActive
}

// mergeOrder keeps saved ids that still exist, in saved relative order, then
// appends current-document ids the snapshot never saw, in document order.
// Resume is therefore stable under document shrinkage and growth.
func mergeOrder(saved, current []string) []string {
	known := make(map[string]struct{}, len(current))
	for _, id := range current {
		known[id] = struct{}{}
	}

	merged := make([]string, 0, len(current))
	inSaved := make(map[string]struct{}, len(saved))
	for _, id := range saved {
		inSaved[id] = struct{}{}
		if _, ok := known[id]; ok {
			merged = append(merged, id)
		}
	}
	for _, id := range current {
		if _, ok := inSaved[id]; !ok {
			merged = append(merged, id)
		}
	}
	return merged
}

func restorePosition(snap Snapshot, order []string) int {
	if len(order) == 0 {
		return 0
	}
	if snap.CurrentQuestionID != "" {
		for i, id := range order {
			if id == snap.CurrentQuestionID {
				return i
			}
		}
	}
	pos := snap.CurrentPosition
	if pos < 0 {
		pos = 0
	}
	if pos > len(order)-1 {
		pos = len(order) - 1
	}
	return pos
}
