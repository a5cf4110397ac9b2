package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiztrack/internal/domain"
)

func TestQuestionCacheFillsRedisOnce(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	loader := &countingLoader{set: sampleSet()}
	cache := NewQuestionCache(client, loader, time.Minute)

	set, err := cache.Questions(ctx)
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if set.Count() != 1 {
		t.Fatalf("expected 1 question, got %d", set.Count())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:bank") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call must come from the cache.
	if _, err := cache.Questions(ctx); err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	set   domain.QuestionSet
	calls int
}

func (l *countingLoader) Load(context.Context) (domain.QuestionSet, error) {
	l.calls++
	return l.set, nil
}

func sampleSet() domain.QuestionSet {
	return domain.QuestionSet{
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Options: []string{"3", "4"}, Correct: 1},
		},
	}
}
