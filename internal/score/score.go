// Package score derives per-question correctness and an aggregate summary
// from a finished attempt, and serializes results for download.
package score

import (
	"quiz-runner/internal/domain"
)

// Unanswered is the label used when a question has no recorded answer.
const Unanswered = "Not answered"

// Result is the scored outcome of one question.
type Result struct {
	Number             int                 `json:"questionNumber"`
	QuestionID         string              `json:"questionId"`
	Prompt             string              `json:"questionText"`
	Type               domain.QuestionType `json:"questionType"`
	UserAnswerLabel    string              `json:"userAnswer"`
	CorrectAnswerLabel string              `json:"correctAnswer"`
	IsCorrect          bool                `json:"isCorrect"`
	Explanation        string              `json:"explanation,omitempty"`
}

// Summary aggregates a scored attempt.
type Summary struct {
	Correct int     `json:"correct"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// Score evaluates answers against the document, in original document order
// regardless of how the attempt was shuffled. Correctness is strict,
// type-checked equality: a boolean never matches a numeric answer. Pure, no
// side effects.
func Score(doc domain.Document, answers map[string]domain.Answer) []Result {
	results := make([]Result, 0, len(doc.Questions))
	for i, q := range doc.Questions {
		answer, answered := answers[q.ID]
		r := Result{
			Number:             i + 1,
			QuestionID:         q.ID,
			Prompt:             q.Prompt,
			Type:               q.Type,
			UserAnswerLabel:    Unanswered,
			CorrectAnswerLabel: answerLabel(q, canonicalAnswer(q)),
			Explanation:        q.Explanation,
		}
		if answered {
			r.UserAnswerLabel = answerLabel(q, answer)
			r.IsCorrect = answer.Matches(q)
		}
		results = append(results, r)
	}
	return results
}

// Summarize folds results into a total.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.IsCorrect {
			s.Correct++
		}
	}
	if s.Total > 0 {
		s.Percent = float64(s.Correct) / float64(s.Total) * 100
	}
	return s
}

func canonicalAnswer(q domain.Question) domain.Answer {
	if q.Type == domain.TypeTrueFalse {
		return domain.BoolAnswer(q.AnswerBool)
	}
	return domain.ChoiceAnswer(q.AnswerIndex)
}

// answerLabel renders an answer as a human string: the option text for mc,
// "True"/"False" for tf.
func answerLabel(q domain.Question, a domain.Answer) string {
	switch a.Kind {
	case domain.AnswerChoice:
		if a.Choice >= 0 && a.Choice < len(q.Options) {
			return q.Options[a.Choice]
		}
		return Unanswered
	case domain.AnswerBoolean:
		if a.Bool {
			return "True"
		}
		return "False"
	}
	return Unanswered
}
