package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"quiztrack/internal/domain"
)

type quizState struct {
	bun.BaseModel `bun:"table:quiz_state"`

	UserID        string `bun:"user_id,pk"`
	QuestionIndex int    `bun:"question_index"`
	UserScore     int    `bun:"user_score"`
}

// SessionStore persists quiz progress in the quiz_state table. Upserts use
// INSERT ... ON CONFLICT so a write always replaces the full record.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, userID string) (domain.Session, bool, error) {
	row := new(quizState)
	err := s.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, domain.NewStorageError("get session", err)
	}
	return domain.Session{
		UserID:        row.UserID,
		QuestionIndex: row.QuestionIndex,
		Score:         row.UserScore,
	}, true, nil
}

func (s *SessionStore) Upsert(ctx context.Context, userID string, questionIndex, score int) error {
	row := &quizState{
		UserID:        userID,
		QuestionIndex: questionIndex,
		UserScore:     score,
	}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("question_index = EXCLUDED.question_index").
		Set("user_score = EXCLUDED.user_score").
		Exec(ctx)
	if err != nil {
		return domain.NewStorageError("upsert session", err)
	}
	return nil
}

func (s *SessionStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	var rows []quizState
	err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("user_score DESC, user_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, domain.NewStorageError("top scores", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			UserID: row.UserID,
			Score:  row.UserScore,
		})
	}
	return entries, nil
}
