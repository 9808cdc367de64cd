package analytics

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	Summary(viewer *auth.User) (Summary, error)
	Departments(viewer *auth.User) ([]DepartmentRank, error)
	Categories(viewer *auth.User) ([]CategoryInsight, error)
	ValidationStats(viewer *auth.User) (ValidationStats, error)
	TopVendors(viewer *auth.User, n int) ([]VendorStats, error)
	Trends(viewer *auth.User) (Trends, error)
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

func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return user, true
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	summary, err := h.Service.Summary(user)
	if err != nil {
		h.Logger.Error("GetSummary: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	ranking, err := h.Service.Departments(user)
	if err != nil {
		h.Logger.Error("GetDepartments: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute department ranking")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": ranking})
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	insights, err := h.Service.Categories(user)
	if err != nil {
		h.Logger.Error("GetCategories: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute category insights")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": insights})
}

func (h *Handler) GetValidationStats(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	stats, err := h.Service.ValidationStats(user)
	if err != nil {
		h.Logger.Error("GetValidationStats: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute validation stats")
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) GetTopVendors(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	vendors, err := h.Service.TopVendors(user, limit)
	if err != nil {
		h.Logger.Error("GetTopVendors: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute vendor ranking")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"vendors": vendors})
}

func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	user, ok := h.viewer(w, r)
	if !ok {
		return
	}

	trends, err := h.Service.Trends(user)
	if err != nil {
		h.Logger.Error("GetTrends: service error", "error", err, "viewer_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to compute trends")
		return
	}

	h.WriteJSON(w, http.StatusOK, trends)
}
