package ai

import (
	"encoding/json"
	"fmt"
)

const maxVocabWords = 10

const vocabSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "word": {"type": "string"},
      "partOfSpeech": {"type": "string"},
      "definition": {"type": "string"},
      "example": {"type": "string"}
    },
    "required": ["word", "partOfSpeech", "definition", "example"]
  }
}`

const quizSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "word": {"type": "string"},
      "definition": {"type": "string"},
      "question": {"type": "string"},
      "options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
      "correct_option_idx": {"type": "integer", "minimum": 0, "maximum": 3}
    },
    "required": ["word", "definition", "question", "options", "correct_option_idx"]
  }
}`

func vocabPrompt(text string) string {
	return fmt.Sprintf(`You are an expert language teacher. Identify up to %d words from the provided text that would be valuable for a language learner to study.

Select words that are:
1. Relatively uncommon or advanced
2. Useful in various contexts
3. Worth adding to one's vocabulary

Your response must be valid JSON that strictly follows the JSON schema below, without any additional content or commentary.
%s

Return words in their singular form. Do not select more than %d words, even if the text contains many good candidates.

Input text: %q
Output:`, maxVocabWords, vocabSchema, maxVocabWords, text)
}

func quizPrompt(words []QuizWord) (string, error) {
	info, err := json.MarshalIndent(words, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal quiz words: %w", err)
	}
	return fmt.Sprintf(`You are an expert language teacher creating a vocabulary quiz. Generate multiple choice questions where students guess the word based on definitions or context.

For each word:
1. Create a question WITHOUT revealing the target word. Keep it engaging and avoid overly advanced vocabulary.
2. Provide 4 possible word choices, including the correct word.
3. Make wrong options plausible but clearly incorrect.
4. Vary question formats (definition-based, context clues, synonyms).

Words and their information:
%s

Return a JSON array strictly following this schema, with no additional text:
%s

Make sure:
- Each question has exactly 4 options
- correct_option_idx is 0-3 and points at the correct option
- Questions never contain the target word
- Wrong answers are plausible words from a similar category`, info, quizSchema), nil
}
