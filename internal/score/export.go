package score

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// csvHeader is the fixed export header; column order is part of the contract.
var csvHeader = []string{
	"Question Number",
	"Question ID",
	"Question Text",
	"Question Type",
	"User Answer",
	"Correct Answer",
	"Is Correct",
	"Explanation",
}

// ExportJSON renders results as a pretty-printed JSON array.
func ExportJSON(results []Result) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}

// ExportCSV renders results with standard CSV quoting: every embedded quote
// is doubled by the writer, never hand-concatenated.
func ExportCSV(results []Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Number),
			r.QuestionID,
			r.Prompt,
			string(r.Type),
			r.UserAnswerLabel,
			r.CorrectAnswerLabel,
			strconv.FormatBool(r.IsCorrect),
			r.Explanation,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportFilename builds a download name embedding the ISO date, e.g.
// "quiz-results-2026-09-01.csv".
func ExportFilename(ext string, now time.Time) string {
	return fmt.Sprintf("quiz-results-%s.%s", now.Format("2006-01-02"), ext)
}
