package domain

import "fmt"

// Question is a single multiple-choice question: a prompt, an ordered list of
// options, and the index of the correct option. Questions are immutable once
// loaded into a QuestionSet.
type Question struct {
	Prompt  string   `json:"prompt" yaml:"prompt"`
	Options []string `json:"options" yaml:"options"`
	Correct int      `json:"correct" yaml:"correct"`
}

// Validate checks structural constraints: at least two options and a correct
// index inside the option range.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q: need at least 2 options, got %d", q.Prompt, len(q.Options))
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("question %q: correct index %d out of range [0,%d)", q.Prompt, q.Correct, len(q.Options))
	}
	return nil
}

// QuestionSet is the ordered, read-only question bank a quiz runs against.
// It is shared freely across goroutines; nothing mutates it after load.
type QuestionSet struct {
	Questions []Question `json:"questions" yaml:"questions"`
}

// Count returns the number of questions in the set.
func (s QuestionSet) Count() int { return len(s.Questions) }

// At returns the question at index i, or ErrQuestionOutOfRange.
func (s QuestionSet) At(i int) (Question, error) {
	if i < 0 || i >= len(s.Questions) {
		return Question{}, fmt.Errorf("question index %d of %d: %w", i, len(s.Questions), ErrQuestionOutOfRange)
	}
	return s.Questions[i], nil
}

// Validate validates every question in the set.
func (s QuestionSet) Validate() error {
	for _, q := range s.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Session is the per-user progress record: which question the user is on and
// how many they have answered correctly. Score never exceeds QuestionIndex
// since the index advances on every answer and the score only on correct ones.
type Session struct {
	UserID        string
	QuestionIndex int
	Score         int
}

// LeaderboardEntry is a read-only (user, score) projection used for ranking.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// RankedEntry is a LeaderboardEntry with its 1-based position.
type RankedEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Score  int    `json:"score"`
}

// AnswerOption is one selectable choice in a rendered question. The Correct
// flag lets the presentation layer report the outcome back without re-deriving
// it from option text, which may not be unique.
type AnswerOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// RenderQuestion instructs the presentation layer to show a question with
// selectable options. Number and Total are 1-based display positions.
type RenderQuestion struct {
	Number  int            `json:"number"`
	Total   int            `json:"total"`
	Prompt  string         `json:"prompt"`
	Options []AnswerOption `json:"options"`
}

// RenderMessage instructs the presentation layer to show plain text.
type RenderMessage struct {
	Text string `json:"text"`
}

// AnswerOutcome summarizes a processed answer for a single user.
type AnswerOutcome struct {
	Chosen        string `json:"chosen"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	QuestionIndex int    `json:"questionIndex"`
	Score         int    `json:"score"`
	Completed     bool   `json:"completed"`
}
