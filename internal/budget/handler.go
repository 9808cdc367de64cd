package budget

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	CreateBudget(dto CreateBudgetDTO) (*BudgetItem, error)
	GetBudgetsByFiscalYear(year int) ([]*BudgetItem, error)
	UpdateBudget(id string, dto UpdateBudgetDTO) (*BudgetItem, error)
	DeleteBudget(id string) error
	CreateControl(dto CreateControlDTO) (*SpendingControl, error)
	ListControls() ([]*SpendingControl, error)
	UpdateControl(id string, dto UpdateControlDTO) (*SpendingControl, error)
	DeleteControl(id string) error
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

func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var dto CreateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.CreateBudget(dto)
	if err != nil {
		h.Logger.Error("CreateBudget: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("fiscal_year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}

	budgets, err := h.Service.GetBudgetsByFiscalYear(year)
	if err != nil {
		h.Logger.Error("ListBudgets: service error", "error", err, "fiscal_year", year)
		h.WriteError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"budgets":     budgets,
		"fiscal_year": year,
	})
}

func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "id")

	var dto UpdateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.UpdateBudget(budgetID, dto)
	if err != nil {
		h.Logger.Error("UpdateBudget: service error", "error", err, "budget_id", budgetID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	budgetID := chi.URLParam(r, "id")
	if err := h.Service.DeleteBudget(budgetID); err != nil {
		h.Logger.Error("DeleteBudget: service error", "error", err, "budget_id", budgetID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateControl(w http.ResponseWriter, r *http.Request) {
	var dto CreateControlDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.CreateControl(dto)
	if err != nil {
		h.Logger.Error("CreateControl: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListControls(w http.ResponseWriter, r *http.Request) {
	controls, err := h.Service.ListControls()
	if err != nil {
		h.Logger.Error("ListControls: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list spending controls")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"controls": controls})
}

func (h *Handler) UpdateControl(w http.ResponseWriter, r *http.Request) {
	controlID := chi.URLParam(r, "id")

	var dto UpdateControlDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.UpdateControl(controlID, dto)
	if err != nil {
		h.Logger.Error("UpdateControl: service error", "error", err, "control_id", controlID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteControl(w http.ResponseWriter, r *http.Request) {
	controlID := chi.URLParam(r, "id")
	if err := h.Service.DeleteControl(controlID); err != nil {
		h.Logger.Error("DeleteControl: service error", "error", err, "control_id", controlID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
