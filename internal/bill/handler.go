package bill

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/transport"
	"github.com/xtractpay/xtractpay/pkg/logger"
)

type ServiceAPI interface {
	SubmitBill(employeeID string, dto SubmitBillDTO) (*Bill, error)
	IngestExpense(dto IngestExpenseDTO) (*IngestResult, error)
	GetBill(id, requesterID string, canViewAll bool) (*Bill, error)
	GetEmployeeBills(employeeID string) ([]*Bill, error)
	GetManagerBills(managerID string) ([]*Bill, error)
	GetAllBills() ([]*Bill, error)
	GetFlaggedBills() ([]*Bill, error)
	ApproveBill(billID, approverID string) (*Bill, error)
	RejectBill(billID, rejecterID, reason string) (*Bill, error)
	UpdateBill(billID, editorID string, dto UpdateBillDTO) (*Bill, error)
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

func (h *Handler) SubmitBill(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("SubmitBill: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto SubmitBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitBill: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.SubmitBill(user.ID, dto)
	if err != nil {
		h.Logger.Error("SubmitBill: service error", "error", err, "employee_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, b)
}

// IngestExpense serves the extraction pipeline's unauthenticated POST.
// Response shapes match what that pipeline expects: a success flag, a
// message, and on success the derived document id.
func (h *Handler) IngestExpense(w http.ResponseWriter, r *http.Request) {
	var dto IngestExpenseDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("IngestExpense: invalid request body", "error", err)
		h.writeIngestError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.Service.IngestExpense(dto)
	if err != nil {
		h.Logger.Error("IngestExpense: service error", "error", err)

		if appErr, ok := internalerrors.IsAppError(err); ok {
			status, _ := appErr.ToHTTPResponse()
			h.writeIngestError(w, status, appErr.Message, err)
			return
		}
		h.writeIngestError(w, http.StatusInternalServerError, "failed to save expense", err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "expense saved",
		"data":    result,
	})
}

func (h *Handler) writeIngestError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{
		"success": false,
		"message": message,
	}
	if status >= http.StatusInternalServerError && err != nil {
		body["error"] = err.Error()
	}
	h.WriteJSON(w, status, body)
}

// MethodNotAllowed answers non-POST hits on the ingest route
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
		"success": false,
		"message": "method not allowed",
	})
}

func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetBill: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	billID := chi.URLParam(r, "id")
	if billID == "" {
		h.WriteError(w, http.StatusBadRequest, "bill id is required")
		return
	}

	b, err := h.Service.GetBill(billID, user.ID, user.Role != auth.RoleEmployee)
	if err != nil {
		h.Logger.Error("GetBill: service error", "error", err, "bill_id", billID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) GetMyBills(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetMyBills: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	bills, err := h.Service.GetEmployeeBills(user.ID)
	if err != nil {
		h.Logger.Error("GetMyBills: service error", "error", err, "employee_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get bills")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}

// GetTeamBills returns the bills of a manager's employees; admins see all
func (h *Handler) GetTeamBills(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("GetTeamBills: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var bills []*Bill
	var err error
	if user.Role == auth.RoleAdmin {
		bills, err = h.Service.GetAllBills()
	} else {
		bills, err = h.Service.GetManagerBills(user.ID)
	}
	if err != nil {
		h.Logger.Error("GetTeamBills: service error", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to get bills")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}

func (h *Handler) GetFlaggedBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Service.GetFlaggedBills()
	if err != nil {
		h.Logger.Error("GetFlaggedBills: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get flagged bills")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"bills": bills})
}

func (h *Handler) ApproveBill(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("ApproveBill: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	billID := chi.URLParam(r, "id")
	b, err := h.Service.ApproveBill(billID, user.ID)
	if err != nil {
		h.Logger.Error("ApproveBill: service error", "error", err, "bill_id", billID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) RejectBill(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("RejectBill: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	billID := chi.URLParam(r, "id")

	var dto RejectBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RejectBill: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.RejectBill(billID, user.ID, dto.Reason)
	if err != nil {
		h.Logger.Error("RejectBill: service error", "error", err, "bill_id", billID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.Logger.Error("UpdateBill: user not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	billID := chi.URLParam(r, "id")

	var dto UpdateBillDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateBill: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.UpdateBill(billID, user.ID, dto)
	if err != nil {
		h.Logger.Error("UpdateBill: service error", "error", err, "bill_id", billID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, b)
}
