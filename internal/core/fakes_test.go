package core

import (
	"context"
	"sync"

	"github.com/baxromumarov/wordwise/internal/ai"
	"github.com/baxromumarov/wordwise/internal/content"
	"github.com/baxromumarov/wordwise/internal/dictionary"
)

type fakeDictionary struct {
	mu      sync.Mutex
	words   []string
	entries []dictionary.Entry
	err     error
}

func (f *fakeDictionary) Lookup(_ context.Context, word string) ([]dictionary.Entry, error) {
	f.mu.Lock()
	f.words = append(f.words, word)
	f.mu.Unlock()
	return f.entries, f.err
}

type fakePhonetics struct {
	byWord map[string]dictionary.Phonetic
	err    error
}

func (f fakePhonetics) Phonetics(_ context.Context, word string) (dictionary.Phonetic, error) {
	return f.byWord[word], f.err
}

type fakeAI struct {
	mu        sync.Mutex
	vocab     []ai.VocabItem
	quiz      []ai.QuizQuestion
	err       error
	gotText   string
	gotWords  []ai.QuizWord
	callCount int
}

func (f *fakeAI) ExtractVocabulary(_ context.Context, text string) ([]ai.VocabItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.gotText = text
	return f.vocab, f.err
}

func (f *fakeAI) GenerateQuiz(_ context.Context, words []ai.QuizWord) ([]ai.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	f.gotWords = words
	return f.quiz, f.err
}

type fakePages struct {
	page *content.Page
	err  error
	urls []string
}

func (f *fakePages) Fetch(_ context.Context, rawURL string) (*content.Page, error) {
	f.urls = append(f.urls, rawURL)
	return f.page, f.err
}

func ptr(s string) *string { return &s }
