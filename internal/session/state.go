// Package session implements the quiz attempt state machine: the ordered
// progression setup → settings → active → results with answer recording,
// clamped navigation, shuffle-on-start, and snapshot/resume.
package session

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quiz-runner/internal/domain"
)

// Phase is the coarse-grained stage of a session.
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseSettings Phase = "settings"
	PhaseActive   Phase = "active"
	PhaseResults  Phase = "results"
)

// State is one quiz attempt. It is not goroutine-safe; callers serialize
// access (see app.Runner).
type State struct {
	Document    domain.Document
	Settings    domain.Settings
	ActiveOrder []string
	Answers     map[string]domain.Answer
	Position    int
	Phase       Phase
	SessionID   string
	LastSavedAt time.Time

	now   func() time.Time
	rnd   *rand.Rand
	newID func() string
}

// New returns an empty session in the setup phase.
func New() *State {
	return NewWithClock(time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithClock allows deterministic timestamps and shuffles in tests.
func NewWithClock(now func() time.Time, rnd *rand.Rand) *State {
	return &State{
		Phase:   PhaseSetup,
		Answers: make(map[string]domain.Answer),
		now:     now,
		rnd:     rnd,
		newID:   uuid.NewString,
	}
}

// Load installs a successfully parsed document and moves to the settings
// phase. Any prior in-memory attempt is replaced, never merged: answers are
// cleared, the position resets, and a fresh session id is generated.
func (s *State) Load(doc domain.Document) {
	s.Document = doc
	s.Settings = domain.Settings{}
	s.ActiveOrder = nil
	s.Answers = make(map[string]domain.Answer)
	s.Position = 0
	s.SessionID = s.newID()
	s.Phase = PhaseSettings
}

// Start fixes the active order and enters the active phase. Shuffling happens
// here and only here, always from the loaded document's order, so a resumed
// session is never reshuffled.
func (s *State) Start(settings domain.Settings) error {
	if s.Phase != PhaseSettings {
		return domain.ErrInvalidTransition
	}
	order := s.Document.QuestionIDs()
	if settings.RandomOrder {
		// Fisher–Yates, every permutation equally likely.
		s.rnd.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	s.Settings = settings
	s.ActiveOrder = order
	s.Position = 0
	s.Phase = PhaseActive
	return nil
}

// Answer records a value for a question. The value's kind must match the
// question's variant; mismatches are rejected and never stored. Re-answering
// overwrites. Position and phase are untouched.
func (s *State) Answer(questionID string, value domain.Answer) error {
	if s.Phase != PhaseActive {
		return domain.ErrInvalidTransition
	}
	q, ok := s.Document.QuestionByID(questionID)
	if !ok {
		return domain.ErrQuestionNotFound
	}
	switch q.Type {
	case domain.TypeMultipleChoice:
		if value.Kind != domain.AnswerChoice {
			return domain.ErrAnswerTypeMismatch
		}
	case domain.TypeTrueFalse:
		if value.Kind != domain.AnswerBoolean {
			return domain.ErrAnswerTypeMismatch
		}
	}
	s.Answers[questionID] = value
	return nil
}

// Advance moves to the next question. It refuses to move past an unanswered
// current question so the caller can warn the user; the position is clamped
// at the last question.
func (s *State) Advance() error {
	if s.Phase != PhaseActive {
		return domain.ErrInvalidTransition
	}
	id, ok := s.CurrentQuestionID()
	if !ok {
		return nil
	}
	if _, answered := s.Answers[id]; !answered {
		return domain.ErrUnanswered
	}
	if s.Position < len(s.ActiveOrder)-1 {
		s.Position++
	}
	return nil
}

// Retreat moves to the previous question, clamped at 0.
func (s *State) Retreat() error {
	if s.Phase != PhaseActive {
		return domain.ErrInvalidTransition
	}
	if s.Position > 0 {
		s.Position--
	}
	return nil
}

// Finish moves to results. When unanswered questions remain the caller's
// confirm callback decides; declining leaves the session active.
func (s *State) Finish(confirm func(unanswered int) bool) (bool, error) {
	if s.Phase != PhaseActive {
		return false, domain.ErrInvalidTransition
	}
	if n := s.UnansweredCount(); n > 0 {
		if confirm == nil || !confirm(n) {
			return false, nil
		}
	}
	s.Phase = PhaseResults
	return true, nil
}

// Quit snapshots the attempt and returns to setup. The snapshot stays
// available for resume; the caller persists it.
func (s *State) Quit() (Snapshot, error) {
	if s.Phase != PhaseActive {
		return Snapshot{}, domain.ErrInvalidTransition
	}
	if s.SessionID == "" {
		s.SessionID = s.newID()
	}
	snap := s.Snapshot()
	s.Phase = PhaseSetup
	return snap, nil
}

// Restart discards the finished attempt and returns to setup.
func (s *State) Restart() error {
	if s.Phase != PhaseResults {
		return domain.ErrInvalidTransition
	}
	s.Phase = PhaseSetup
	return nil
}

// CurrentQuestionID returns the id at the current position.
func (s *State) CurrentQuestionID() (string, bool) {
	if s.Position < 0 || s.Position >= len(s.ActiveOrder) {
		return "", false
	}
	return s.ActiveOrder[s.Position], true
}

// CurrentQuestion returns the question at the current position.
func (s *State) CurrentQuestion() (domain.Question, bool) {
	id, ok := s.CurrentQuestionID()
	if !ok {
		return domain.Question{}, false
	}
	return s.Document.QuestionByID(id)
}

// UnansweredCount counts questions in the active order without an answer.
func (s *State) UnansweredCount() int {
	n := 0
	for _, id := range s.ActiveOrder {
		if _, ok := s.Answers[id]; !ok {
			n++
		}
	}
	return n
}

// Completed reports whether every presented question has a recorded answer.
func (s *State) Completed() bool {
	return len(s.ActiveOrder) > 0 && s.UnansweredCount() == 0
}
