// Package bank provides question-bank sources for the quiz engine. The bank
// is loaded once and treated as immutable for the process lifetime.
package bank

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quiztrack/internal/domain"
)

// Loader fetches question content from a backing store (file, database).
// Caching sources wrap a Loader and call it on miss.
type Loader interface {
	Load(ctx context.Context) (domain.QuestionSet, error)
}

// Static serves a fixed question set from memory.
type Static struct {
	set domain.QuestionSet
}

func NewStatic(questions []domain.Question) (*Static, error) {
	set := domain.QuestionSet{Questions: questions}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &Static{set: set}, nil
}

// Questions implements app.QuestionSource.
func (s *Static) Questions(_ context.Context) (domain.QuestionSet, error) {
	return s.set, nil
}

// Load implements Loader, so a Static bank can stand in for a backing store
// in tests and demos.
func (s *Static) Load(_ context.Context) (domain.QuestionSet, error) {
	return s.set, nil
}

// FileLoader reads the question bank from a YAML file.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(_ context.Context) (domain.QuestionSet, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.QuestionSet{}, domain.NewStorageError("read bank file", err)
	}
	var set domain.QuestionSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("parse bank file %s: %w", l.path, err)
	}
	if err := set.Validate(); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("bank file %s: %w", l.path, err)
	}
	return set, nil
}
