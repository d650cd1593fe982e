package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/datawise-ai/advisor-engine/pkg/apperrors"
	"github.com/datawise-ai/advisor-engine/pkg/services"
)

// FraudScanRequest for POST /api/fraud/scan.
type FraudScanRequest struct {
	Table           string  `json:"table"`
	AmountThreshold float64 `json:"amount_threshold,omitempty"`
}

// FraudScanResponse for POST /api/fraud/scan.
type FraudScanResponse struct {
	Report string `json:"report"`
}

// FraudHandler handles fraud scan HTTP requests.
type FraudHandler struct {
	fraud  services.FraudService
	logger *zap.Logger
}

// NewFraudHandler creates a new fraud handler.
func NewFraudHandler(fraud services.FraudService, logger *zap.Logger) *FraudHandler {
	return &FraudHandler{fraud: fraud, logger: logger}
}

// RegisterRoutes registers the fraud handler's routes on the given mux.
func (h *FraudHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/fraud/scan", h.Scan)
}

// Scan handles POST /api/fraud/scan
func (h *FraudHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req FraudScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if strings.TrimSpace(req.Table) == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "missing_table", "Table is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	report, err := h.fraud.Scan(r.Context(), req.Table, req.AmountThreshold)
	if err != nil {
		h.logger.Error("Fraud scan failed",
			zap.String("table", req.Table),
			zap.Error(err))

		status := apperrors.HTTPStatus(err)
		errorCode := "scan_failed"
		message := "Fraud scan failed"
		if status == http.StatusBadRequest {
			errorCode = "invalid_table"
			message = "Table name failed validation"
		}
		if err := ErrorResponse(w, status, errorCode, message); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := FraudScanResponse{Report: report}
	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
