package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/baxromumarov/wordwise/internal/textutil"
)

var quizKeys = []string{"word", "definition", "question", "options", "correct_option_idx"}

// parseVocabulary accepts a JSON array. Items that are not objects or have
// no word are dropped; missing text fields become empty strings.
func parseVocabulary(raw string) ([]VocabItem, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(textutil.StripCodeFence(raw)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	out := make([]VocabItem, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}
		v := VocabItem{
			Word:         stringField(fields, "word"),
			PartOfSpeech: stringField(fields, "partOfSpeech"),
			Definition:   stringField(fields, "definition"),
			Example:      stringField(fields, "example"),
		}
		if v.Word == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// parseQuiz is all or nothing: any item that lacks a key, does not have
// exactly four options or points outside them rejects the whole answer.
func parseQuiz(raw string) ([]QuizQuestion, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(textutil.StripCodeFence(raw)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	out := make([]QuizQuestion, 0, len(items))
	for i, fields := range items {
		for _, key := range quizKeys {
			if _, ok := fields[key]; !ok {
				return nil, fmt.Errorf("%w: question %d has no %q", ErrMalformedOutput, i, key)
			}
		}
		var q QuizQuestion
		var idx float64
		if err := unmarshalFields(fields, map[string]any{
			"word":               &q.Word,
			"definition":         &q.Definition,
			"question":           &q.Question,
			"options":            &q.Options,
			"correct_option_idx": &idx,
		}); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrMalformedOutput, i, err)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("%w: question %d has %d options", ErrMalformedOutput, i, len(q.Options))
		}
		if idx < 0 || idx > 3 || idx != math.Trunc(idx) {
			return nil, fmt.Errorf("%w: question %d has correct_option_idx %v", ErrMalformedOutput, i, idx)
		}
		q.CorrectOptionIdx = int(idx)
		out = append(out, q)
	}
	return out, nil
}

func unmarshalFields(fields map[string]json.RawMessage, targets map[string]any) error {
	for key, dst := range targets {
		if err := json.Unmarshal(fields[key], dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
