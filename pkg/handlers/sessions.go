package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/services"
)

// SessionResponse for POST /api/sessions.
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// SessionListResponse for GET /api/sessions.
type SessionListResponse struct {
	Sessions []models.SessionInfo `json:"sessions"`
	Total    int                  `json:"total"`
}

// SessionHandler handles session lifecycle HTTP requests.
type SessionHandler struct {
	chat   services.ChatService
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(chat services.ChatService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{chat: chat, logger: logger}
}

// RegisterRoutes registers the session handler's routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.Create)
	mux.HandleFunc("GET /api/sessions", h.List)
	mux.HandleFunc("DELETE /api/sessions/{sid}", h.Delete)
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sessionID := h.chat.NewSession(r.Context())

	data := SessionResponse{SessionID: sessionID.String()}
	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chat.ActiveSessions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list sessions"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := SessionListResponse{
		Sessions: sessions,
		Total:    len(sessions),
	}
	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/sessions/{sid}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.chat.ClearSession(r.Context(), sessionID); err != nil {
		h.logger.Error("Failed to clear session",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to clear session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: map[string]string{"message": "Session cleared"}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
