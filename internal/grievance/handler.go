package grievance

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	FileGrievance(employeeID string, dto CreateGrievanceDTO) (*Grievance, error)
	GetGrievance(id, requesterID string, canViewAll bool) (*Grievance, error)
	GetEmployeeGrievances(employeeID string) ([]*Grievance, error)
	GetAllGrievances() ([]*Grievance, error)
	ResolveGrievance(id, resolverID string, dto ResolveGrievanceDTO) (*Grievance, error)
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

func (h *Handler) FileGrievance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGrievanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("FileGrievance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.Service.FileGrievance(user.ID, dto)
	if err != nil {
		h.Logger.Error("FileGrievance: service error", "error", err, "employee_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, g)
}

func (h *Handler) GetGrievance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grievanceID := chi.URLParam(r, "id")
	g, err := h.Service.GetGrievance(grievanceID, user.ID, user.IsManager())
	if err != nil {
		h.Logger.Error("GetGrievance: service error", "error", err, "grievance_id", grievanceID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) GetMyGrievances(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grievances, err := h.Service.GetEmployeeGrievances(user.ID)
	if err != nil {
		h.Logger.Error("GetMyGrievances: service error", "error", err, "employee_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get grievances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"grievances": grievances})
}

func (h *Handler) GetAllGrievances(w http.ResponseWriter, r *http.Request) {
	grievances, err := h.Service.GetAllGrievances()
	if err != nil {
		h.Logger.Error("GetAllGrievances: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get grievances")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"grievances": grievances})
}

func (h *Handler) ResolveGrievance(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	grievanceID := chi.URLParam(r, "id")

	var dto ResolveGrievanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ResolveGrievance: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.Service.ResolveGrievance(grievanceID, user.ID, dto)
	if err != nil {
		h.Logger.Error("ResolveGrievance: service error", "error", err, "grievance_id", grievanceID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, g)
}
