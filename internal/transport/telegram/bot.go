// Package telegram renders quiz sessions through the Telegram Bot API:
// questions become messages with inline option keyboards, answers come back
// as callback queries.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"quiztrack/internal/app"
	"quiztrack/internal/domain"
)

const (
	startQuizButton = "Start quiz"
	topPlayersCount = 10
)

type Bot struct {
	api    *tgbotapi.BotAPI
	engine *app.Engine
	log    *zap.Logger
}

func New(token string, engine *app.Engine, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, engine: engine, log: log}, nil
}

// Run polls for updates until ctx is canceled. Telegram delivers one update
// at a time per chat, which satisfies the engine's per-user ordering
// expectation without extra queuing here.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("telegram bot starting", zap.String("account", b.api.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)

	switch {
	case msg.Command() == "start":
		b.sendWelcome(chatID)
	case msg.Command() == "quiz", msg.Text == startQuizButton:
		b.beginQuiz(ctx, chatID, userID)
	case msg.Command() == "score":
		b.sendLeaderboard(ctx, chatID)
	default:
		b.sendText(chatID, "Unknown command. Try /quiz or /score.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	userID := strconv.FormatInt(callback.From.ID, 10)

	ack := tgbotapi.NewCallback(callback.ID, "")
	if _, err := b.api.Request(ack); err != nil {
		b.log.Warn("callback ack failed", zap.Error(err))
	}

	if cmd, ok := decodeAnswer(callback.Data); ok {
		// Drop the keyboard so the answered question cannot be answered twice.
		clear := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		if _, err := b.api.Request(clear); err != nil {
			b.log.Warn("clear keyboard failed", zap.Error(err))
		}
		b.submitAnswer(ctx, chatID, userID, cmd)
		return
	}

	switch callback.Data {
	case callbackStartQuiz:
		b.beginQuiz(ctx, chatID, userID)
	case callbackLeaderboard:
		b.sendLeaderboard(ctx, chatID)
	default:
		b.sendText(chatID, "Unknown action.")
	}
}

func (b *Bot) sendWelcome(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Welcome to the quiz!")
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(startQuizButton)),
	)
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard
	b.sendMsg(msg)
}

func (b *Bot) beginQuiz(ctx context.Context, chatID int64, userID string) {
	b.sendText(chatID, "Let's start the quiz!")
	question, err := b.engine.StartNewQuiz(ctx, userID)
	if err != nil {
		b.reportError(chatID, userID, err)
		return
	}
	b.sendQuestion(chatID, question)
}

func (b *Bot) submitAnswer(ctx context.Context, chatID int64, userID string, cmd answerCommand) {
	outcome, err := b.engine.SubmitAnswer(ctx, userID, cmd.Option, cmd.Correct)
	if err != nil {
		b.reportError(chatID, userID, err)
		return
	}

	b.sendText(chatID, "Your answer: "+outcome.Chosen)
	if outcome.Correct {
		b.sendText(chatID, "Correct!")
	} else {
		b.sendText(chatID, "Wrong. The right answer is: "+outcome.CorrectAnswer)
	}

	if outcome.Completed {
		b.sendCompletion(chatID, outcome)
		return
	}

	question, err := b.engine.CurrentQuestion(ctx, userID)
	if err != nil {
		b.reportError(chatID, userID, err)
		return
	}
	b.sendQuestion(chatID, question)
}

func (b *Bot) sendQuestion(chatID int64, question domain.RenderQuestion) {
	text := fmt.Sprintf("Question %d/%d\n\n%s", question.Number, question.Total, question.Prompt)
	msg := tgbotapi.NewMessage(chatID, text)

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(question.Options))
	for _, option := range question.Options {
		button := tgbotapi.NewInlineKeyboardButtonData(option.Text, encodeAnswer(option.Text, option.Correct))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button))
	}
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMsg(msg)
}

func (b *Bot) sendCompletion(chatID int64, outcome domain.AnswerOutcome) {
	text := fmt.Sprintf("That was the last question. Quiz finished!\n\nYour result: %d/%d", outcome.Score, outcome.QuestionIndex)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Play again", callbackStartQuiz),
			tgbotapi.NewInlineKeyboardButtonData("Leaderboard", callbackLeaderboard),
		),
	)
	b.sendMsg(msg)
}

func (b *Bot) sendLeaderboard(ctx context.Context, chatID int64) {
	entries, err := b.engine.Leaderboard(ctx, topPlayersCount)
	if err != nil {
		b.reportError(chatID, "", err)
		return
	}
	if len(entries) == 0 {
		b.sendText(chatID, "No results yet. Be the first, send /quiz!")
		return
	}

	var sb strings.Builder
	sb.WriteString("Top players:\n")
	for _, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s - %d points\n", entry.Rank, entry.UserID, entry.Score)
	}
	b.sendText(chatID, sb.String())
}

func (b *Bot) reportError(chatID int64, userID string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionCompleted):
		b.sendText(chatID, "No active question: the quiz is already finished. Send /quiz to play again.")
	case domain.IsStorageError(err):
		b.log.Error("storage failure", zap.String("user", userID), zap.Error(err))
		b.sendText(chatID, "Something went wrong on our side, please try again.")
	default:
		b.log.Error("quiz interaction failed", zap.String("user", userID), zap.Error(err))
		b.sendText(chatID, "Something went wrong, please try again.")
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.sendMsg(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send failed", zap.Int64("chat", msg.ChatID), zap.Error(err))
	}
}
