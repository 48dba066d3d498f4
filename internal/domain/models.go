package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionType discriminates the question union.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "mc"
	TypeTrueFalse      QuestionType = "tf"
)

// Metadata describes the quiz as a whole. Immutable once parsed.
type Metadata struct {
	Name   string `json:"name"`
	Author string `json:"author,omitempty"`
}

// Question is a tagged union keyed by Type: multiple-choice questions carry
// Options plus AnswerIndex, true/false questions carry AnswerBool.
type Question struct {
	ID          string
	Type        QuestionType
	Prompt      string
	Options     []string
	AnswerIndex int
	AnswerBool  bool
	Explanation string
}

// Document is the strict typed quiz document: metadata plus at least one
// question. Question order is the display order in the absence of shuffling.
type Document struct {
	Metadata  Metadata   `json:"metadata"`
	Questions []Question `json:"questions"`
}

// Settings holds per-attempt options chosen before the quiz starts.
type Settings struct {
	RandomOrder bool `json:"randomOrder"`
}

// QuestionIDs returns question ids in document order.
func (d Document) QuestionIDs() []string {
	ids := make([]string, len(d.Questions))
	for i, q := range d.Questions {
		ids[i] = q.ID
	}
	return ids
}

// QuestionByID looks a question up by id.
func (d Document) QuestionByID(id string) (Question, bool) {
	for _, q := range d.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type questionJSON struct {
	ID          string          `json:"id"`
	Type        QuestionType    `json:"type"`
	Prompt      string          `json:"prompt"`
	Options     []string        `json:"options,omitempty"`
	Answer      json.RawMessage `json:"answer"`
	Explanation string          `json:"explanation,omitempty"`
}

// MarshalJSON writes the answer in the variant's wire shape: an option index
// for mc, a bare boolean for tf.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Prompt:      q.Prompt,
		Options:     q.Options,
		Explanation: q.Explanation,
	}
	var err error
	switch q.Type {
	case TypeTrueFalse:
		out.Answer, err = json.Marshal(q.AnswerBool)
	default:
		out.Answer, err = json.Marshal(q.AnswerIndex)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	q.ID = in.ID
	q.Type = in.Type
	q.Prompt = in.Prompt
	q.Options = in.Options
	q.Explanation = in.Explanation
	switch in.Type {
	case TypeTrueFalse:
		return json.Unmarshal(in.Answer, &q.AnswerBool)
	case TypeMultipleChoice:
		return json.Unmarshal(in.Answer, &q.AnswerIndex)
	default:
		return fmt.Errorf("unknown question type %q", in.Type)
	}
}

// AnswerKind discriminates recorded answer values.
type AnswerKind int

const (
	AnswerNone AnswerKind = iota
	AnswerChoice
	AnswerBoolean
)

// Answer is a recorded answer value: an option index for mc questions, a
// boolean for tf questions. The zero value means "not yet answered".
type Answer struct {
	Kind   AnswerKind
	Choice int
	Bool   bool
}

// ChoiceAnswer records a selected option index.
func ChoiceAnswer(index int) Answer { return Answer{Kind: AnswerChoice, Choice: index} }

// BoolAnswer records a true/false selection.
func BoolAnswer(v bool) Answer { return Answer{Kind: AnswerBoolean, Bool: v} }

// Matches reports whether the answer fits the question's variant and equals
// its canonical answer. Cross-variant comparisons are never equal.
func (a Answer) Matches(q Question) bool {
	switch q.Type {
	case TypeMultipleChoice:
		return a.Kind == AnswerChoice && a.Choice == q.AnswerIndex
	case TypeTrueFalse:
		return a.Kind == AnswerBoolean && a.Bool == q.AnswerBool
	}
	return false
}

// MarshalJSON keeps the persisted shape a bare scalar (number, boolean, or
// null) so snapshots match the original answers map layout.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerChoice:
		return json.Marshal(a.Choice)
	case AnswerBoolean:
		return json.Marshal(a.Bool)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*a = Answer{}
	case bool:
		*a = BoolAnswer(v)
	case float64:
		*a = ChoiceAnswer(int(v))
	default:
		return fmt.Errorf("answer must be a number or boolean, got %T", v)
	}
	return nil
}
