package memory

import (
	"context"
	"sort"
	"sync"

	"quiztrack/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. Progress
// is lost on restart; it backs tests and token-free local runs.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

func (s *SessionStore) Get(_ context.Context, userID string) (domain.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	return session, ok, nil
}

func (s *SessionStore) Upsert(_ context.Context, userID string, questionIndex, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = domain.Session{
		UserID:        userID,
		QuestionIndex: questionIndex,
		Score:         score,
	}
	return nil
}

func (s *SessionStore) TopScores(_ context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(s.sessions))
	for _, session := range s.sessions {
		entries = append(entries, domain.LeaderboardEntry{
			UserID: session.UserID,
			Score:  session.Score,
		})
	}
	s.mu.RUnlock()

	// Ties break on user ID so repeated queries return a stable order.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})

	if limit >= 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
