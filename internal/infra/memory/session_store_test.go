package memory

import (
	"context"
	"testing"
)

func TestSessionStoreGetAbsent(t *testing.T) {
	store := NewSessionStore()

	_, found, err := store.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected absent record")
	}
}

func TestSessionStoreUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Upsert(ctx, "u1", 2, 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := store.Upsert(ctx, "u1", 0, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	session, found, err := store.Get(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("expected record, found=%v err=%v", found, err)
	}
	if session.QuestionIndex != 0 || session.Score != 0 {
		t.Fatalf("expected full replace to (0,0), got (%d,%d)", session.QuestionIndex, session.Score)
	}
}

func TestSessionStoreTopScores(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	_ = store.Upsert(ctx, "A", 5, 5)
	_ = store.Upsert(ctx, "B", 9, 9)
	_ = store.Upsert(ctx, "C", 2, 2)

	top, err := store.TopScores(ctx, 2)
	if err != nil {
		t.Fatalf("top scores: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Score > top[i-1].Score {
			t.Fatalf("scores not non-increasing: %+v", top)
		}
	}
	if top[0].UserID != "B" || top[1].UserID != "A" {
		t.Fatalf("expected [B, A], got %+v", top)
	}
}
