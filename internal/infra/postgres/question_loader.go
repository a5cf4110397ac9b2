package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiztrack/internal/domain"
)

// DefaultBankID names the bank row served when no explicit ID is configured.
const DefaultBankID = "default"

// QuestionLoader loads the question bank JSONB from Postgres.
type QuestionLoader struct {
	pool   *pgxpool.Pool
	bankID string
}

func NewQuestionLoader(pool *pgxpool.Pool, bankID string) *QuestionLoader {
	if bankID == "" {
		bankID = DefaultBankID
	}
	return &QuestionLoader{pool: pool, bankID: bankID}
}

func (l *QuestionLoader) Load(ctx context.Context) (domain.QuestionSet, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_bank WHERE id=$1`, l.bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuestionSet{}, fmt.Errorf("question bank %q not seeded", l.bankID)
	}
	if err != nil {
		return domain.QuestionSet{}, domain.NewStorageError("load bank", err)
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("unmarshal bank %q: %w", l.bankID, err)
	}
	if err := set.Validate(); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("bank %q: %w", l.bankID, err)
	}
	return set, nil
}
