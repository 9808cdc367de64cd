package bill

import (
	"context"
	"log/slog"
	"time"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/core/events"
)

// Repository defines the data access methods for bills
type Repository interface {
	Create(b *Bill) error
	GetByID(id string) (*Bill, error)
	GetByEmployeeID(employeeID string) ([]*Bill, error)
	GetByEmployeeIDs(employeeIDs []string) ([]*Bill, error)
	GetAll() ([]*Bill, error)
	GetFlagged() ([]*Bill, error)
	Update(b *Bill) error
}

// EmployeeDirectory resolves bill submitters. The extraction pipeline
// identifies them by phone number only; manager views need the set of
// employee ids a manager owns.
type EmployeeDirectory interface {
	EmployeeIDByPhone(phone string) (string, error)
	ManagedEmployeeIDs(managerID string) ([]string, error)
}

// Notifier delivers best-effort expense summaries; it must never block
type Notifier interface {
	EnqueueSummary(b *Bill)
}

// EventPublisher fans bill lifecycle events out to subscribers
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service handles bill business logic
type Service struct {
	repo      Repository
	directory EmployeeDirectory
	notifier  Notifier
	eventBus  EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, directory EmployeeDirectory, notifier Notifier, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// SubmitBill creates a bill for an authenticated employee
func (s *Service) SubmitBill(employeeID string, dto SubmitBillDTO) (*Bill, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("bill validation failed", "error", err, "employee_id", employeeID)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	b := s.newBill(employeeID, dto.Vendor, dto.BillNumber, float64(dto.Amount), dto)
	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create bill", "error", err, "bill_id", b.ID)
		return nil, err
	}

	s.afterSubmit(context.Background(), b)

	s.logger.Info("bill submitted",
		"bill_id", b.ID,
		"employee_id", employeeID,
		"amount", b.Amount,
		"vendor", b.Vendor)

	return b, nil
}

// IngestExpense persists a bill arriving from the extraction pipeline.
// The submitter is resolved by phone number; a missing phone is a
// validation error and an unknown phone maps to employee-not-found.
func (s *Service) IngestExpense(dto IngestExpenseDTO) (*IngestResult, error) {
	if dto.PhoneNumber == "" {
		s.logger.Warn("ingest rejected: missing phone number")
		return nil, internalerrors.NewValidationError("phone number is required", internalerrors.ErrCodeMissingPhone)
	}
	if err := dto.Validate(); err != nil {
		s.logger.Error("ingest validation failed", "error", err)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	employeeID, err := s.directory.EmployeeIDByPhone(dto.PhoneNumber)
	if err != nil {
		s.logger.Warn("no employee for phone number", "phone", dto.PhoneNumber)
		return nil, internalerrors.ErrEmployeeNotFound
	}

	b := s.newBill(employeeID, dto.Vendor, dto.BillNumber, float64(dto.Amount), SubmitBillDTO{
		Vendor:           dto.Vendor,
		BillNumber:       dto.BillNumber,
		Amount:           dto.Amount,
		Category:         dto.Category,
		Department:       dto.Department,
		Description:      dto.Description,
		PaymentType:      dto.PaymentType,
		GSTNumber:        dto.GSTNumber,
		ExpenseDate:      dto.ExpenseDate,
		ValidationResult: dto.ValidationResult,
	})

	// The pipeline timestamps the submission itself; prefer its clock.
	if t := dto.SubmissionDate.Time(); !t.IsZero() {
		b.SubmittedAt = t
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to persist ingested bill", "error", err, "bill_id", b.ID)
		return nil, internalerrors.NewInternalError("failed to save expense", err)
	}

	s.afterSubmit(context.Background(), b)

	s.logger.Info("expense ingested",
		"bill_id", b.ID,
		"employee_id", employeeID,
		"amount", b.Amount)

	return &IngestResult{DocID: b.ID, EmployeeID: employeeID}, nil
}

func (s *Service) newBill(employeeID, vendor, billNumber string, amount float64, dto SubmitBillDTO) *Bill {
	now := time.Now()
	expenseDate := dto.ExpenseDate.Time()
	if expenseDate.IsZero() {
		expenseDate = now
	}

	b := &Bill{
		ID:               DocID(vendor, billNumber),
		EmployeeID:       employeeID,
		Vendor:           vendor,
		BillNumber:       billNumber,
		Amount:           amount,
		Category:         dto.Category,
		Department:       dto.Department,
		Description:      dto.Description,
		PaymentType:      dto.PaymentType,
		GSTNumber:        dto.GSTNumber,
		Status:           StatusPending,
		ValidationResult: dto.ValidationResult,
		AuditHistory:     AuditHistory{{Date: now, Action: "submitted", User: employeeID}},
		ExpenseDate:      expenseDate,
		SubmittedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	b.IsFlagged = !dto.ValidationResult.BillValid && dto.ValidationResult.Reason != ""

	return b
}

func (s *Service) afterSubmit(ctx context.Context, b *Bill) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewBillSubmittedEvent(b.ID, b.EmployeeID, b.Vendor, b.Amount, b.Category, b.Department))
	}
	if s.notifier != nil {
		s.notifier.EnqueueSummary(b)
	}
}

// GetBill retrieves a bill, restricting employees to their own records
func (s *Service) GetBill(id, requesterID string, canViewAll bool) (*Bill, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get bill", "error", err, "bill_id", id)
		return nil, internalerrors.ErrBillNotFound
	}

	if !canViewAll && b.EmployeeID != requesterID {
		s.logger.Warn("unauthorized access to bill", "bill_id", id, "requester_id", requesterID)
		return nil, internalerrors.ErrUnauthorizedAccess
	}

	return b, nil
}

// GetEmployeeBills lists a single employee's bills, newest first
func (s *Service) GetEmployeeBills(employeeID string) ([]*Bill, error) {
	bills, err := s.repo.GetByEmployeeID(employeeID)
	if err != nil {
		s.logger.Error("failed to get employee bills", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return bills, nil
}

// GetTeamBills lists the bills of a manager's employees
func (s *Service) GetTeamBills(employeeIDs []string) ([]*Bill, error) {
	if len(employeeIDs) == 0 {
		return []*Bill{}, nil
	}

	bills, err := s.repo.GetByEmployeeIDs(employeeIDs)
	if err != nil {
		s.logger.Error("failed to get team bills", "error", err)
		return nil, err
	}
	return bills, nil
}

// GetManagerBills lists the bills of every employee the manager owns
func (s *Service) GetManagerBills(managerID string) ([]*Bill, error) {
	employeeIDs, err := s.directory.ManagedEmployeeIDs(managerID)
	if err != nil {
		s.logger.Error("failed to resolve managed employees", "error", err, "manager_id", managerID)
		return nil, err
	}
	return s.GetTeamBills(employeeIDs)
}

// GetAllBills lists every bill for admin views
func (s *Service) GetAllBills() ([]*Bill, error) {
	bills, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get all bills", "error", err)
		return nil, err
	}
	return bills, nil
}

// GetFlaggedBills lists bills whose validation flagged them
func (s *Service) GetFlaggedBills() ([]*Bill, error) {
	bills, err := s.repo.GetFlagged()
	if err != nil {
		s.logger.Error("failed to get flagged bills", "error", err)
		return nil, err
	}
	return bills, nil
}

// ApproveBill sets a pending bill to approved. The write replaces the
// whole record without a version check, so concurrent decisions resolve
// to whichever write lands last.
func (s *Service) ApproveBill(billID, approverID string) (*Bill, error) {
	b, err := s.repo.GetByID(billID)
	if err != nil {
		s.logger.Error("bill not found for approval", "error", err, "bill_id", billID)
		return nil, internalerrors.ErrBillNotFound
	}

	if !b.CanBeApproved() {
		s.logger.Warn("cannot approve bill in current status",
			"bill_id", billID,
			"current_status", b.Status)
		return nil, internalerrors.ErrInvalidBillStatus
	}

	b.Approve(approverID)
	if err := s.repo.Update(b); err != nil {
		s.logger.Error("failed to approve bill", "error", err, "bill_id", billID)
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(context.Background(), events.NewBillApprovedEvent(b.ID, b.EmployeeID, approverID, b.Amount))
	}

	s.logger.Info("bill approved",
		"bill_id", billID,
		"approved_by", approverID,
		"amount", b.Amount)

	return b, nil
}

// RejectBill sets a pending bill to rejected with a mandatory reason
func (s *Service) RejectBill(billID, rejecterID, reason string) (*Bill, error) {
	if reason == "" {
		s.logger.Warn("reject refused: missing reason", "bill_id", billID)
		return nil, internalerrors.NewValidationError("reason is required when rejecting a bill", internalerrors.ErrCodeMissingReason)
	}

	b, err := s.repo.GetByID(billID)
	if err != nil {
		s.logger.Error("bill not found for rejection", "error", err, "bill_id", billID)
		return nil, internalerrors.ErrBillNotFound
	}

	if !b.CanBeRejected() {
		s.logger.Warn("cannot reject bill in current status",
			"bill_id", billID,
			"current_status", b.Status)
		return nil, internalerrors.ErrInvalidBillStatus
	}

	b.Reject(rejecterID, reason)
	if err := s.repo.Update(b); err != nil {
		s.logger.Error("failed to reject bill", "error", err, "bill_id", billID)
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(context.Background(), events.NewBillRejectedEvent(b.ID, b.EmployeeID, rejecterID, reason))
	}

	s.logger.Info("bill rejected",
		"bill_id", billID,
		"rejected_by", rejecterID,
		"reason", reason)

	return b, nil
}

// UpdateBill patches administrative fields and appends an audit entry
func (s *Service) UpdateBill(billID, editorID string, dto UpdateBillDTO) (*Bill, error) {
	b, err := s.repo.GetByID(billID)
	if err != nil {
		s.logger.Error("bill not found for update", "error", err, "bill_id", billID)
		return nil, internalerrors.ErrBillNotFound
	}

	if dto.Category != nil {
		b.Category = *dto.Category
	}
	if dto.Department != nil {
		b.Department = *dto.Department
	}
	if dto.Description != nil {
		b.Description = *dto.Description
	}
	if dto.IsFlagged != nil {
		b.IsFlagged = *dto.IsFlagged
	}

	b.UpdatedAt = time.Now()
	b.AuditHistory = append(b.AuditHistory, AuditEntry{
		Date:   b.UpdatedAt,
		Action: "updated",
		User:   editorID,
	})

	if err := s.repo.Update(b); err != nil {
		s.logger.Error("failed to update bill", "error", err, "bill_id", billID)
		return nil, err
	}

	s.logger.Info("bill updated", "bill_id", billID, "updated_by", editorID)

	return b, nil
}
