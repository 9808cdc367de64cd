package activity

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	ListRecent(limit int) ([]*Entry, error)
	ListAlerts(limit int) ([]*Alert, error)
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

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	entries, err := h.Service.ListRecent(limit)
	if err != nil {
		h.Logger.Error("ListActivity: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"activity": entries})
}

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 20)

	alerts, err := h.Service.ListAlerts(limit)
	if err != nil {
		h.Logger.Error("ListAlerts: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

func parseLimit(r *http.Request, fallback int) int {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return fallback
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}
