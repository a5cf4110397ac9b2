package bank

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quiztrack/internal/domain"
)

func TestNewStaticRejectsInvalidQuestions(t *testing.T) {
	cases := []struct {
		name     string
		question domain.Question
	}{
		{"too few options", domain.Question{Prompt: "p", Options: []string{"only"}, Correct: 0}},
		{"correct index negative", domain.Question{Prompt: "p", Options: []string{"a", "b"}, Correct: -1}},
		{"correct index past end", domain.Question{Prompt: "p", Options: []string{"a", "b"}, Correct: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewStatic([]domain.Question{tc.question}); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestFileLoaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := `questions:
  - prompt: "What is 2 + 2?"
    options: ["3", "4"]
    correct: 1
  - prompt: "Pick b"
    options: ["a", "b", "c"]
    correct: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	set, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Count() != 2 {
		t.Fatalf("expected 2 questions, got %d", set.Count())
	}
	q, err := set.At(0)
	if err != nil {
		t.Fatalf("at: %v", err)
	}
	if q.Prompt != "What is 2 + 2?" || q.Correct != 1 {
		t.Fatalf("unexpected question: %+v", q)
	}

	if _, err := set.At(2); !errors.Is(err, domain.ErrQuestionOutOfRange) {
		t.Fatalf("expected ErrQuestionOutOfRange, got %v", err)
	}
}

func TestFileLoaderMissingFileIsStorageError(t *testing.T) {
	_, err := NewFileLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load(context.Background())
	if !domain.IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestFileLoaderRejectsInvalidBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := `questions:
  - prompt: "bad"
    options: ["a", "b"]
    correct: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatalf("expected validation error")
	}
}
