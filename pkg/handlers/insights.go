package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/models"
	"github.com/datawise-ai/advisor-engine/pkg/repositories"
)

// InsightResponse is one persisted insight in the list payload.
type InsightResponse struct {
	ID          int    `json:"id"`
	Summary     string `json:"summary"`
	SourceQuery string `json:"source_query"`
	CreatedAt   string `json:"created_at"`
}

// InsightListResponse for GET /api/insights.
type InsightListResponse struct {
	Insights []InsightResponse `json:"insights"`
	Total    int               `json:"total"`
}

// InsightHandler handles read access to persisted analysis insights.
type InsightHandler struct {
	insights repositories.InsightRepository
	logger   *zap.Logger
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(insights repositories.InsightRepository, logger *zap.Logger) *InsightHandler {
	return &InsightHandler{insights: insights, logger: logger}
}

// RegisterRoutes registers the insight handler's routes on the given mux.
func (h *InsightHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/insights", h.List)
}

// List handles GET /api/insights
// Returns the most recently persisted insights, newest first. The repository
// clamps out-of-range limits.
func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	insights, err := h.insights.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list insights", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list insights"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := InsightListResponse{
		Insights: make([]InsightResponse, len(insights)),
		Total:    len(insights),
	}
	for i, insight := range insights {
		data.Insights[i] = toInsightResponse(insight)
	}

	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func toInsightResponse(i *models.Insight) InsightResponse {
	return InsightResponse{
		ID:          i.ID,
		Summary:     i.Summary,
		SourceQuery: i.SourceQuery,
		CreatedAt:   i.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
