// Package jsonx extracts JSON documents from model response text and
// validates them against an optional JSON Schema.
package jsonx

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrNoDocument is returned when no JSON document can be found in the
// response text.
var ErrNoDocument = errors.New("no JSON document found in response text")

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Extract pulls the first JSON document out of text. Models rarely
// return bare JSON even when asked, so extraction tries three shapes
// in order: the whole text as a JSON value, fenced code blocks, and
// finally the first balanced object literal buried in prose.
func Extract(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrNoDocument
	}

	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	for _, m := range fenceRe.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	if doc, ok := firstObject(text); ok {
		return json.RawMessage(doc), nil
	}

	return nil, ErrNoDocument
}

// firstObject scans for the first balanced object literal that parses
// as JSON, advancing past false starts such as braces in prose.
func firstObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}

		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}

		start += 1 + next
	}

	return "", false
}

// matchBrace returns the index of the brace closing the object opened
// at start, or -1 when the object never closes. Braces inside string
// literals do not count.
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// Schema is a compiled JSON Schema ready to validate documents.
type Schema struct {
	resolved *jsonschema.Resolved
}

// CompileSchema parses and resolves a JSON Schema. A schema that does
// not parse or resolve is the caller's error, distinct from a document
// that fails validation.
func CompileSchema(raw []byte) (*Schema, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}

	return &Schema{resolved: resolved}, nil
}

// Validate checks an extracted document against the schema.
func (s *Schema) Validate(doc json.RawMessage) error {
	var instance any
	if err := json.Unmarshal(doc, &instance); err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	if err := s.resolved.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	return nil
}
