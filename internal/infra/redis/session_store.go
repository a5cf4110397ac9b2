package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"quiztrack/internal/domain"
)

const (
	statePrefix = "quiz:state:"
	scoresKey   = "quiz:scores"

	fieldQuestionIndex = "question_index"
	fieldUserScore     = "user_score"
)

// SessionStore persists per-user quiz progress in Redis: a hash per user for
// the full record and a sorted set mirroring scores for leaderboard reads.
// Both are written in one pipeline so the ZSET cannot drift from the hashes
// under the engine's per-user serialization.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Get(ctx context.Context, userID string) (domain.Session, bool, error) {
	values, err := s.client.HGetAll(ctx, statePrefix+userID).Result()
	if err != nil {
		return domain.Session{}, false, domain.NewStorageError("get session", err)
	}
	if len(values) == 0 {
		return domain.Session{}, false, nil
	}

	index, err := strconv.Atoi(values[fieldQuestionIndex])
	if err != nil {
		return domain.Session{}, false, domain.NewStorageError("decode question index", err)
	}
	score, err := strconv.Atoi(values[fieldUserScore])
	if err != nil {
		return domain.Session{}, false, domain.NewStorageError("decode score", err)
	}

	return domain.Session{UserID: userID, QuestionIndex: index, Score: score}, true, nil
}

func (s *SessionStore) Upsert(ctx context.Context, userID string, questionIndex, score int) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, statePrefix+userID,
		fieldQuestionIndex, questionIndex,
		fieldUserScore, score,
	)
	pipe.ZAdd(ctx, scoresKey, redis.Z{Score: float64(score), Member: userID})
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.NewStorageError("upsert session", err)
	}
	return nil
}

func (s *SessionStore) TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	members, err := s.client.ZRevRangeWithScores(ctx, scoresKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, domain.NewStorageError("top scores", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, member := range members {
		userID, ok := member.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			UserID: userID,
			Score:  int(member.Score),
		})
	}
	return entries, nil
}
