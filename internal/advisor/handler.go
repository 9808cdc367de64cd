package advisor

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	AnalyzeCost(ctx context.Context, bills []BillSummary) ([]CostRecommendation, error)
	AnalyzeTax(ctx context.Context, bills []BillSummary) ([]TaxRecommendation, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// AnalyzeRequest is the legacy analysis payload
type AnalyzeRequest struct {
	Bills []BillSummary `json:"bills"`
}

// AnalyzeCost serves POST /api/analyze-cost. Failure responses use the
// bare {"error": ...} shape the dashboard expects.
func (h *Handler) AnalyzeCost(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("AnalyzeCost: invalid request body", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	recommendations, err := h.Service.AnalyzeCost(r.Context(), req.Bills)
	if err != nil {
		h.Logger.Error("AnalyzeCost: service error", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to analyze expenses"})
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recommendations})
}

// AnalyzeTax serves POST /api/analyze-tax
func (h *Handler) AnalyzeTax(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("AnalyzeTax: invalid request body", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	recommendations, err := h.Service.AnalyzeTax(r.Context(), req.Bills)
	if err != nil {
		h.Logger.Error("AnalyzeTax: service error", "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to analyze expenses"})
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"recommendations": recommendations})
}
