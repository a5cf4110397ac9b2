package app

import (
	"context"
	"sync"

	"quiztrack/internal/domain"
)

// SessionStore abstracts how per-user quiz progress is persisted (in-memory,
// Redis, Postgres). Get reports absence through its second return value; the
// zero default for unseen users is applied by the Engine, not by stores.
type SessionStore interface {
	Get(ctx context.Context, userID string) (domain.Session, bool, error)
	Upsert(ctx context.Context, userID string, questionIndex, score int) error
	TopScores(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// QuestionSource supplies the immutable question bank (from a static set,
// a file, or a cache over a backing store).
type QuestionSource interface {
	Questions(ctx context.Context) (domain.QuestionSet, error)
}

// Engine drives the per-user quiz state machine: start, advance-on-answer,
// completion detection, leaderboard. All state round-trips through the
// SessionStore; the engine holds no per-user progress between calls.
type Engine struct {
	store SessionStore
	bank  QuestionSource

	// locks serializes interactions per user so a read-modify-write in
	// SubmitAnswer cannot race with a concurrent call for the same user.
	// Entries are never removed; the map is bounded by the user population.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store SessionStore, bank QuestionSource) *Engine {
	return &Engine{
		store: store,
		bank:  bank,
		locks: make(map[string]*sync.Mutex),
	}
}

// StartNewQuiz resets the user's session to the beginning and returns the
// rendering for question 0. A restart always wins, regardless of prior state.
func (e *Engine) StartNewQuiz(ctx context.Context, userID string) (domain.RenderQuestion, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	set, err := e.bank.Questions(ctx)
	if err != nil {
		return domain.RenderQuestion{}, err
	}
	if set.Count() == 0 {
		return domain.RenderQuestion{}, domain.ErrEmptyBank
	}
	if err := e.store.Upsert(ctx, userID, 0, 0); err != nil {
		return domain.RenderQuestion{}, err
	}
	return renderAt(set, 0)
}

// CurrentQuestion returns the rendering for the user's current question.
// For a completed session it returns ErrSessionCompleted; callers are
// expected to check the outcome of SubmitAnswer before asking for more.
func (e *Engine) CurrentQuestion(ctx context.Context, userID string) (domain.RenderQuestion, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	set, err := e.bank.Questions(ctx)
	if err != nil {
		return domain.RenderQuestion{}, err
	}
	if set.Count() == 0 {
		return domain.RenderQuestion{}, domain.ErrEmptyBank
	}
	session, err := e.loadSession(ctx, userID)
	if err != nil {
		return domain.RenderQuestion{}, err
	}
	if session.QuestionIndex >= set.Count() {
		return domain.RenderQuestion{}, domain.ErrSessionCompleted
	}
	return renderAt(set, session.QuestionIndex)
}

// SubmitAnswer advances the user's session by one question, incrementing the
// score when the answer was correct. Correctness is determined by the caller
// from the option tag handed out in the rendering; option text alone is
// ambiguous when duplicated. Users without a prior session start from zero.
func (e *Engine) SubmitAnswer(ctx context.Context, userID, chosen string, wasCorrect bool) (domain.AnswerOutcome, error) {
	unlock := e.lockUser(userID)
	defer unlock()

	set, err := e.bank.Questions(ctx)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	if set.Count() == 0 {
		return domain.AnswerOutcome{}, domain.ErrEmptyBank
	}
	session, err := e.loadSession(ctx, userID)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}
	if session.QuestionIndex >= set.Count() {
		return domain.AnswerOutcome{}, domain.ErrSessionCompleted
	}

	question, err := set.At(session.QuestionIndex)
	if err != nil {
		return domain.AnswerOutcome{}, err
	}

	newScore := session.Score
	if wasCorrect {
		newScore++
	}
	newIndex := session.QuestionIndex + 1

	if err := e.store.Upsert(ctx, userID, newIndex, newScore); err != nil {
		return domain.AnswerOutcome{}, err
	}

	return domain.AnswerOutcome{
		Chosen:        chosen,
		Correct:       wasCorrect,
		CorrectAnswer: question.Options[question.Correct],
		QuestionIndex: newIndex,
		Score:         newScore,
		Completed:     newIndex >= set.Count(),
	}, nil
}

// Leaderboard returns up to n stored sessions ranked by score descending.
// It is a pure read over the store; asking for it creates no records.
func (e *Engine) Leaderboard(ctx context.Context, n int) ([]domain.RankedEntry, error) {
	entries, err := e.store.TopScores(ctx, n)
	if err != nil {
		return nil, err
	}
	ranked := make([]domain.RankedEntry, 0, len(entries))
	for i, entry := range entries {
		ranked = append(ranked, domain.RankedEntry{
			Rank:   i + 1,
			UserID: entry.UserID,
			Score:  entry.Score,
		})
	}
	return ranked, nil
}

func (e *Engine) loadSession(ctx context.Context, userID string) (domain.Session, error) {
	session, found, err := e.store.Get(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if !found {
		return domain.Session{UserID: userID}, nil
	}
	return session, nil
}

func (e *Engine) lockUser(userID string) func() {
	e.mu.Lock()
	lock, ok := e.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[userID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func renderAt(set domain.QuestionSet, index int) (domain.RenderQuestion, error) {
	question, err := set.At(index)
	if err != nil {
		return domain.RenderQuestion{}, err
	}
	options := make([]domain.AnswerOption, 0, len(question.Options))
	for i, text := range question.Options {
		options = append(options, domain.AnswerOption{
			Text:    text,
			Correct: i == question.Correct,
		})
	}
	return domain.RenderQuestion{
		Number:  index + 1,
		Total:   set.Count(),
		Prompt:  question.Prompt,
		Options: options,
	}, nil
}
