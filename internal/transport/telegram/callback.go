package telegram

import "strings"

// Callback data formats. Answer callbacks carry the correctness flag and the
// option's literal text so the handler never has to resolve indices against
// the bank; they are decoded exactly once, here.
const (
	callbackStartQuiz   = "start_quiz"
	callbackLeaderboard = "leaderboard"

	answerPrefix = "ans|"

	// Telegram caps callback data at 64 bytes.
	maxCallbackData = 64
)

type answerCommand struct {
	Correct bool
	Option  string
}

func encodeAnswer(text string, correct bool) string {
	flag := "0"
	if correct {
		flag = "1"
	}
	data := answerPrefix + flag + "|" + text
	if len(data) > maxCallbackData {
		data = data[:maxCallbackData]
	}
	return data
}

func decodeAnswer(data string) (answerCommand, bool) {
	if !strings.HasPrefix(data, answerPrefix) {
		return answerCommand{}, false
	}
	parts := strings.SplitN(data, "|", 3)
	if len(parts) != 3 {
		return answerCommand{}, false
	}
	return answerCommand{
		Correct: parts[1] == "1",
		Option:  parts[2],
	}, true
}
