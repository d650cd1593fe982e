package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// ChatRequest for POST /api/chat and POST /api/chat/stream.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse for POST /api/chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatMessageResponse is one message in the history payload.
type ChatMessageResponse struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ChatHistoryResponse for GET /api/sessions/{sid}/history.
type ChatHistoryResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []ChatMessageResponse `json:"messages"`
	Total     int                   `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// ChatHandler handles conversational HTTP requests with SSE support.
type ChatHandler struct {
	chat      services.ChatService
	wordDelay time.Duration
	logger    *zap.Logger
}

// NewChatHandler creates a new chat handler. wordDelay is the pause between
// words on the streaming endpoint.
func NewChatHandler(chat services.ChatService, wordDelay time.Duration, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		wordDelay: wordDelay,
		logger:    logger,
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.SendMessage)
	mux.HandleFunc("POST /api/chat/stream", h.StreamMessage)
	mux.HandleFunc("GET /api/sessions/{sid}/history", h.GetHistory)
}

// SendMessage handles POST /api/chat.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeChatRequest(w, r)
	if !ok {
		return
	}

	sessionID, err := h.resolveSession(r.Context(), req.SessionID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_session_id", "Invalid session ID format"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	answer := h.chat.HandleMessage(r.Context(), sessionID, req.Message)

	data := ChatResponse{
		Response:  answer,
		SessionID: sessionID.String(),
	}
	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// StreamMessage handles POST /api/chat/stream.
// This endpoint uses Server-Sent Events (SSE) to stream the response: a
// session event first, one content event per word of the answer, and a
// terminal done event. A malformed session ID is reported as a terminal
// error event since the endpoint always speaks SSE once the body parses.
func (h *ChatHandler) StreamMessage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeChatRequest(w, r)
	if !ok {
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("SSE not supported")
		if err := ErrorResponse(w, http.StatusInternalServerError, "sse_unsupported", "SSE not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	sessionID, err := h.resolveSession(r.Context(), req.SessionID)
	if err != nil {
		h.writeEvent(w, flusher, models.StreamEvent{
			Type:      models.StreamEventError,
			SessionID: req.SessionID,
			Error:     "invalid session ID format",
		})
		return
	}

	h.writeEvent(w, flusher, models.StreamEvent{
		Type:      models.StreamEventSession,
		SessionID: sessionID.String(),
	})

	answer := h.chat.HandleMessage(r.Context(), sessionID, req.Message)

	words := strings.Split(answer, " ")
	for i, word := range words {
		index := i
		h.writeEvent(w, flusher, models.StreamEvent{
			Type:      models.StreamEventContent,
			SessionID: sessionID.String(),
			Content:   word + " ",
			Index:     &index,
		})

		select {
		case <-r.Context().Done():
			return
		case <-time.After(h.wordDelay):
		}
	}

	h.writeEvent(w, flusher, models.StreamEvent{
		Type:      models.StreamEventDone,
		SessionID: sessionID.String(),
	})
}

// GetHistory handles GET /api/sessions/{sid}/history
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	// Parse limit from query params
	limit := 50 // Default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	messages, err := h.chat.History(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("Failed to get chat history",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get chat history"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := ChatHistoryResponse{
		SessionID: sessionID.String(),
		Messages:  make([]ChatMessageResponse, len(messages)),
		Total:     len(messages),
	}
	for i, m := range messages {
		data.Messages[i] = toChatMessageResponse(m)
	}

	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ============================================================================
// Helper Methods
// ============================================================================

// decodeChatRequest decodes and validates the shared chat request body.
// Returns false after writing an error response on failure.
func (h *ChatHandler) decodeChatRequest(w http.ResponseWriter, r *http.Request) (ChatRequest, bool) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return ChatRequest{}, false
	}

	if strings.TrimSpace(req.Message) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_message", "Message is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return ChatRequest{}, false
	}

	return req, true
}

// resolveSession parses the caller-supplied session ID, creating a fresh
// session when none was provided.
func (h *ChatHandler) resolveSession(ctx context.Context, raw string) (uuid.UUID, error) {
	if raw == "" {
		return h.chat.NewSession(ctx), nil
	}
	return uuid.Parse(raw)
}

// writeEvent writes one SSE-formatted event and flushes it to the client.
func (h *ChatHandler) writeEvent(w http.ResponseWriter, flusher http.Flusher, event models.StreamEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal event", zap.Error(err))
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

func toChatMessageResponse(m *models.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
