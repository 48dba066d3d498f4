package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDocument is returned for empty or whitespace-only input, before
	// any format is attempted.
	ErrEmptyDocument = errors.New("document is empty")
	// ErrAnswerTypeMismatch is returned when a recorded answer value does not
	// match the question's variant. The value is never stored.
	ErrAnswerTypeMismatch = errors.New("answer type does not match question type")
	// ErrQuestionNotFound indicates an answer was recorded for an unknown id.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrUnanswered blocks forward navigation while the current question has
	// no recorded answer.
	ErrUnanswered = errors.New("current question is unanswered")
	// ErrInvalidTransition is returned when an operation is called outside the
	// phase it belongs to.
	ErrInvalidTransition = errors.New("operation not allowed in current phase")
)

// ParseError reports that neither supported format accepted the input. It
// carries both underlying causes so the author sees why each attempt failed.
type ParseError struct {
	JSONErr error
	YAMLErr error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"document is neither valid JSON nor valid YAML (json: %v; yaml: %v); expected a top-level list whose first entry is {metadata: {name: ...}} followed by question entries",
		e.JSONErr, e.YAMLErr)
}

// ValidationError aggregates every structural problem found in one
// normalization pass, so a hand-edited document can be fixed in one round.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid quiz document: %s", strings.Join(e.Problems, "; "))
}

// StorageError wraps a persistence failure. Save failures are recoverable:
// callers log them and keep going rather than interrupting the quiz.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
