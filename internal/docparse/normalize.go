package docparse

import (
	"fmt"
	"math"
	"strconv"

	"quiz-runner/internal/domain"
)

// Normalize validates a generic tree and coerces it into a domain.Document.
// Question-level problems never short-circuit: every element is checked and
// all findings are reported in one ValidationError. Only the top-level shape
// checks are fatal on their own, since without a named document there is
// nothing to attach question errors to.
func Normalize(tree any) (domain.Document, error) {
	entries, ok := asSlice(tree)
	if !ok || len(entries) == 0 {
		return domain.Document{}, fatal("document must be a non-empty list: metadata entry first, then one entry per question")
	}

	head, ok := asMap(entries[0])
	if !ok {
		return domain.Document{}, fatal("first entry must be an object containing a metadata object")
	}
	metaRaw, ok := asMap(head["metadata"])
	if !ok {
		return domain.Document{}, fatal("first entry must contain a metadata object")
	}
	name, ok := metaRaw["name"].(string)
	if !ok || name == "" {
		return domain.Document{}, fatal("metadata.name must be a non-empty string")
	}

	meta := domain.Metadata{Name: name}
	var problems []string
	if author, present := metaRaw["author"]; present {
		s, ok := coerceString(author)
		if !ok {
			problems = append(problems, "metadata.author must be a string")
		} else {
			meta.Author = s
		}
	}

	questions := make([]domain.Question, 0, len(entries)-1)
	seen := make(map[string]struct{})
	for i, entry := range entries[1:] {
		q, errs := normalizeQuestion(i+1, entry)
		if len(errs) > 0 {
			problems = append(problems, errs...)
			continue
		}
		if _, dup := seen[q.ID]; dup {
			problems = append(problems, fmt.Sprintf("question %d (id %q): duplicate id", i+1, q.ID))
			continue
		}
		seen[q.ID] = struct{}{}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		problems = append(problems, "document contains no valid questions")
	}
	if len(problems) > 0 {
		return domain.Document{}, &domain.ValidationError{Problems: problems}
	}
	return domain.Document{Metadata: meta, Questions: questions}, nil
}

// normalizeQuestion validates one question entry, returning either the
// coerced question or every problem found in it.
func normalizeQuestion(num int, entry any) (domain.Question, []string) {
	obj, ok := asMap(entry)
	if !ok {
		return domain.Question{}, []string{fmt.Sprintf("question %d: must be an object", num)}
	}

	id, _ := coerceString(obj["id"])
	label := fmt.Sprintf("question %d", num)
	if id != "" {
		label = fmt.Sprintf("question %d (id %q)", num, id)
	}

	var errs []string
	fail := func(format string, args ...any) {
		errs = append(errs, label+": "+fmt.Sprintf(format, args...))
	}

	if id == "" {
		fail("missing or empty id")
	}
	prompt, _ := coerceString(obj["prompt"])
	if prompt == "" {
		fail("missing or empty prompt")
	}

	q := domain.Question{ID: id, Prompt: prompt}
	if expl, present := obj["explanation"]; present {
		if s, ok := coerceString(expl); ok {
			q.Explanation = s
		}
	}

	typ, _ := obj["type"].(string)
	switch domain.QuestionType(typ) {
	case domain.TypeMultipleChoice:
		q.Type = domain.TypeMultipleChoice
		rawOpts, ok := asSlice(obj["options"])
		if !ok || len(rawOpts) < 2 {
			fail("options must be a list with at least 2 entries")
		} else {
			q.Options = make([]string, 0, len(rawOpts))
			for j, o := range rawOpts {
				s, ok := coerceString(o)
				if !ok {
					fail("option %d is not a string", j+1)
					continue
				}
				q.Options = append(q.Options, s)
			}
		}
		idx, ok := asInt(obj["answer"])
		switch {
		case !ok:
			fail("answer must be a number (an option index)")
		case len(q.Options) > 0 && (idx < 0 || idx >= len(q.Options)):
			fail("answer index %d out of range [0, %d)", idx, len(q.Options))
		default:
			q.AnswerIndex = idx
		}
	case domain.TypeTrueFalse:
		q.Type = domain.TypeTrueFalse
		b, ok := obj["answer"].(bool)
		if !ok {
			fail("answer must be a boolean")
		}
		q.AnswerBool = b
	case "":
		fail("missing type (expected \"mc\" or \"tf\")")
	default:
		fail("unknown type %q (expected \"mc\" or \"tf\")", typ)
	}

	if len(errs) > 0 {
		return domain.Question{}, errs
	}
	return q, nil
}

func fatal(msg string) error {
	return &domain.ValidationError{Problems: []string{msg}}
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// asMap accepts both key shapes the two decoders produce for mappings.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

// coerceString canonicalizes scalar ids/options: strings pass through,
// numbers are formatted. Booleans and structures are rejected.
func coerceString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	}
	return "", false
}

// asInt accepts the numeric shapes JSON (float64) and YAML (int) produce,
// rejecting non-integral values.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
