package score

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"quiz-runner/internal/domain"
)

func sampleDocument() domain.Document {
	return domain.Document{
		Metadata: domain.Metadata{Name: "Sample"},
		Questions: []domain.Question{
			{ID: "Q1", Type: domain.TypeTrueFalse, Prompt: "2+2=4", AnswerBool: true},
			{ID: "Q2", Type: domain.TypeMultipleChoice, Prompt: "pick B", Options: []string{"A", "B"}, AnswerIndex: 1},
		},
	}
}

func TestScoreMixedAnswers(t *testing.T) {
	doc := sampleDocument()
	answers := map[string]domain.Answer{
		"Q1": domain.BoolAnswer(true),
		"Q2": domain.ChoiceAnswer(0),
	}

	results := Score(doc, answers)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].IsCorrect {
		t.Fatalf("Q1 should be correct: %+v", results[0])
	}
	if results[1].IsCorrect {
		t.Fatalf("Q2 should be wrong: %+v", results[1])
	}
	if results[1].CorrectAnswerLabel != "B" {
		t.Fatalf("expected correct label B, got %q", results[1].CorrectAnswerLabel)
	}
	if results[1].UserAnswerLabel != "A" {
		t.Fatalf("expected user label A, got %q", results[1].UserAnswerLabel)
	}

	summary := Summarize(results)
	if summary.Correct != 1 || summary.Total != 2 || summary.Percent != 50 {
		t.Fatalf("expected 1/2 (50%%), got %+v", summary)
	}
}

func TestScoreAllCorrect(t *testing.T) {
	doc := sampleDocument()
	answers := map[string]domain.Answer{
		"Q1": domain.BoolAnswer(true),
		"Q2": domain.ChoiceAnswer(1),
	}
	results := Score(doc, answers)
	for _, r := range results {
		if !r.IsCorrect {
			t.Fatalf("expected every result correct, got %+v", r)
		}
	}
	if s := Summarize(results); s.Percent != 100 {
		t.Fatalf("expected 100%%, got %+v", s)
	}
}

// A boolean answer never matches a numeric one implicitly.
func TestScoreCrossTypeNeverMatches(t *testing.T) {
	doc := sampleDocument()
	answers := map[string]domain.Answer{
		"Q1": domain.ChoiceAnswer(1),  // tf question, number stored
		"Q2": domain.BoolAnswer(true), // mc question, boolean stored
	}
	for _, r := range Score(doc, answers) {
		if r.IsCorrect {
			t.Fatalf("cross-type answer must not match: %+v", r)
		}
	}
}

func TestScoreUnansweredSentinel(t *testing.T) {
	results := Score(sampleDocument(), nil)
	for _, r := range results {
		if r.IsCorrect {
			t.Fatalf("unanswered must not be correct: %+v", r)
		}
		if r.UserAnswerLabel != Unanswered {
			t.Fatalf("expected sentinel %q, got %q", Unanswered, r.UserAnswerLabel)
		}
	}
}

func TestScoreUsesDocumentOrder(t *testing.T) {
	results := Score(sampleDocument(), nil)
	if results[0].QuestionID != "Q1" || results[0].Number != 1 ||
		results[1].QuestionID != "Q2" || results[1].Number != 2 {
		t.Fatalf("results must follow document order: %+v", results)
	}
}

func TestExportCSVQuoting(t *testing.T) {
	doc := domain.Document{
		Metadata: domain.Metadata{Name: "q"},
		Questions: []domain.Question{
			{ID: "Q1", Type: domain.TypeTrueFalse, Prompt: `He said "hi"`, AnswerBool: true},
		},
	}
	data, err := ExportCSV(Score(doc, map[string]domain.Answer{"Q1": domain.BoolAnswer(true)}))
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"He said ""hi"""`) {
		t.Fatalf("embedded quotes must be doubled, got:\n%s", out)
	}
	header := strings.SplitN(out, "\n", 2)[0]
	want := "Question Number,Question ID,Question Text,Question Type,User Answer,Correct Answer,Is Correct,Explanation"
	if header != want {
		t.Fatalf("header mismatch:\n got %q\nwant %q", header, want)
	}
}

func TestExportJSONShape(t *testing.T) {
	data, err := ExportJSON(Score(sampleDocument(), map[string]domain.Answer{"Q1": domain.BoolAnswer(true)}))
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not a JSON array: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0]["isCorrect"] != true {
		t.Fatalf("expected isCorrect true, got %v", decoded[0])
	}
	if !strings.Contains(string(data), "\n") {
		t.Fatalf("expected pretty-printed output")
	}
}

func TestExportFilenameEmbedsISODate(t *testing.T) {
	now := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	if got := ExportFilename("csv", now); got != "quiz-results-2025-03-09.csv" {
		t.Fatalf("unexpected filename %q", got)
	}
}
