// Package docparse turns untrusted quiz document text into the strict typed
// schema in two stages: Parse produces a generic tree from either JSON or
// YAML, Normalize validates the tree and coerces it into domain.Document.
package docparse

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"quiz-runner/internal/domain"
)

// Parse decodes raw text into a generic tree. JSON is tried first; on any
// failure YAML is tried, since YAML also accepts JSON scalar syntax. A tree is
// returned only if one full parse succeeds; when both fail the returned
// ParseError carries both causes plus an expected-shape hint.
//
// Content is sniffed, never trusted from a file extension.
func Parse(text string) (any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyDocument
	}

	var tree any
	jsonErr := json.Unmarshal([]byte(text), &tree)
	if jsonErr == nil {
		return tree, nil
	}

	tree = nil
	yamlErr := yaml.Unmarshal([]byte(text), &tree)
	if yamlErr == nil {
		return tree, nil
	}

	return nil, &domain.ParseError{JSONErr: jsonErr, YAMLErr: yamlErr}
}

// ParseDocument is the full ingestion pipeline: Parse then Normalize.
func ParseDocument(text string) (domain.Document, error) {
	tree, err := Parse(text)
	if err != nil {
		return domain.Document{}, err
	}
	return Normalize(tree)
}
