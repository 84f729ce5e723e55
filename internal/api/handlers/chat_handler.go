package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Udhayakumar116/ai-question-gen/internal/models"
	"github.com/Udhayakumar116/ai-question-gen/internal/services"
)

type ChatHandler struct {
	chat   *services.ChatService
	logger *zap.Logger
}

func NewChatHandler(chat *services.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

type ChatRequest struct {
	Message string               `json:"message"`
	History []models.ChatMessage `json:"history"`
}

// ChatAnalysis streams the assistant reply as plain text, flushing after
// every chunk.
func (h *ChatHandler) ChatAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := analysisID(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	flusher, _ := w.(http.Flusher)
	started := false
	err := h.chat.Stream(r.Context(), userID, id, req.History, req.Message, func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err == nil {
		if !started {
			w.WriteHeader(http.StatusNoContent)
		}
		return
	}
	if started {
		// Headers are gone; the truncated body is all the client gets.
		h.logger.Warn("chat stream interrupted", zap.String("user_id", userID), zap.Error(err))
		return
	}
	writeServiceError(w, h.logger, "chat", err)
}
