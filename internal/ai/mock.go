package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/baxromumarov/wordwise/internal/textutil"
)

const mockMinWordLen = 7

var mockDistractors = []string{"ephemeral", "meticulous", "ubiquitous", "gregarious", "pragmatic", "resilient"}

// MockClient answers deterministically without calling any model. It picks
// the longest distinct words of a text and builds simple definition quizzes.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) ExtractVocabulary(ctx context.Context, text string) ([]VocabItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var words []string
	for _, tok := range strings.Fields(textutil.CleanText(text)) {
		if len(tok) < mockMinWordLen {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		words = append(words, tok)
	}
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	if len(words) > maxVocabWords {
		words = words[:maxVocabWords]
	}

	items := make([]VocabItem, 0, len(words))
	for _, w := range words {
		items = append(items, VocabItem{
			Word:         w,
			PartOfSpeech: "unknown",
			Definition:   fmt.Sprintf("Mock definition of %q.", w),
			Example:      fmt.Sprintf("The text used the word %s.", w),
		})
	}
	return items, nil
}

func (m *MockClient) GenerateQuiz(ctx context.Context, words []QuizWord) ([]QuizQuestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	questions := make([]QuizQuestion, 0, len(words))
	for i, w := range words {
		correct := i % 4
		options := make([]string, 0, 4)
		for _, d := range mockDistractors {
			if len(options) == 3 {
				break
			}
			if d != w.Word {
				options = append(options, d)
			}
		}
		options = append(options[:correct], append([]string{w.Word}, options[correct:]...)...)
		questions = append(questions, QuizQuestion{
			Word:             w.Word,
			Definition:       w.Definition,
			Question:         fmt.Sprintf("Which word means: %s", w.Definition),
			Options:          options,
			CorrectOptionIdx: correct,
		})
	}
	return questions, nil
}
