// Package ws exposes the quiz command surface over a WebSocket connection.
// One connection serves one user; rendering instructions from the engine are
// forwarded as typed outbound messages.
package ws

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiztrack/internal/app"
	"quiztrack/internal/domain"
)

const defaultLeaderboardSize = 10

type Handler struct {
	engine   *app.Engine
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(engine *app.Engine, log *zap.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Option int `json:"option"`
}

type leaderboardPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and dispatches quiz commands for the user
// named in the userId query parameter. Messages for one connection are
// handled strictly in order, which gives the engine the per-user ordering
// the transport is responsible for.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The question most recently rendered on this connection. Answer
	// messages carry an option index into it, so correctness is resolved
	// here and never round-trips through the client.
	var current *domain.RenderQuestion

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "start":
			question, err := h.engine.StartNewQuiz(r.Context(), userID)
			if err != nil {
				h.sendError(conn, userID, err)
				continue
			}
			current = &question
			h.send(conn, outboundMessage[domain.RenderQuestion]{Type: "question", Payload: question})

		case "question":
			question, err := h.engine.CurrentQuestion(r.Context(), userID)
			if err != nil {
				h.sendError(conn, userID, err)
				continue
			}
			current = &question
			h.send(conn, outboundMessage[domain.RenderQuestion]{Type: "question", Payload: question})

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}})
				continue
			}
			if current == nil {
				// No question rendered on this connection yet; resume
				// from the persisted session.
				question, err := h.engine.CurrentQuestion(r.Context(), userID)
				if err != nil {
					h.sendError(conn, userID, err)
					continue
				}
				current = &question
			}
			if payload.Option < 0 || payload.Option >= len(current.Options) {
				h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "option index out of range"}})
				continue
			}
			chosen := current.Options[payload.Option]
			outcome, err := h.engine.SubmitAnswer(r.Context(), userID, chosen.Text, chosen.Correct)
			if err != nil {
				h.sendError(conn, userID, err)
				continue
			}
			h.send(conn, outboundMessage[domain.AnswerOutcome]{Type: "answerResult", Payload: outcome})
			if outcome.Completed {
				current = nil
				h.send(conn, outboundMessage[domain.RenderMessage]{Type: "completed", Payload: domain.RenderMessage{
					Text: "That was the last question. Quiz finished!",
				}})
				continue
			}
			question, err := h.engine.CurrentQuestion(r.Context(), userID)
			if err != nil {
				h.sendError(conn, userID, err)
				continue
			}
			current = &question
			h.send(conn, outboundMessage[domain.RenderQuestion]{Type: "question", Payload: question})

		case "leaderboard":
			limit := defaultLeaderboardSize
			if len(inbound.Payload) > 0 {
				var payload leaderboardPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err == nil && payload.Limit > 0 {
					limit = payload.Limit
				}
			}
			entries, err := h.engine.Leaderboard(r.Context(), limit)
			if err != nil {
				h.sendError(conn, userID, err)
				continue
			}
			h.send(conn, outboundMessage[[]domain.RankedEntry]{Type: "leaderboard", Payload: entries})

		default:
			h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg any) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Warn("ws write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(conn *websocket.Conn, userID string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionCompleted):
		h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
			Message: "no active question: quiz already completed, send start to play again",
		}})
	case domain.IsStorageError(err):
		h.log.Error("storage failure", zap.String("user", userID), zap.Error(err))
		h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{
			Message: "temporary storage failure, please retry",
		}})
	default:
		h.log.Error("quiz command failed", zap.String("user", userID), zap.Error(err))
		h.send(conn, outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}
}
