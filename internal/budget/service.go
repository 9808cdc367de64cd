package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/core/events"
)

// Repository defines the data access methods for budgets and controls
type Repository interface {
	CreateBudget(b *BudgetItem) error
	GetBudget(id string) (*BudgetItem, error)
	GetBudgetsByFiscalYear(year int) ([]*BudgetItem, error)
	GetBudgetByTarget(category, department string, year int) (*BudgetItem, error)
	UpdateBudget(b *BudgetItem) error
	DeleteBudget(id string) error

	CreateControl(c *SpendingControl) error
	GetControl(id string) (*SpendingControl, error)
	GetActiveControls() ([]*SpendingControl, error)
	GetAllControls() ([]*SpendingControl, error)
	UpdateControl(c *SpendingControl) error
	DeleteControl(id string) error
}

// EventPublisher emits control-breach events
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     Repository
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) CreateBudget(dto CreateBudgetDTO) (*BudgetItem, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget validation failed", "error", err)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	now := time.Now()
	b := &BudgetItem{
		ID:         uuid.NewString(),
		Category:   dto.Category,
		Department: dto.Department,
		Allocated:  dto.Allocated,
		Remaining:  dto.Allocated,
		FiscalYear: dto.FiscalYear,
		Quarter:    dto.Quarter,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateBudget(b); err != nil {
		s.logger.Error("failed to create budget", "error", err)
		return nil, err
	}

	s.logger.Info("budget created",
		"budget_id", b.ID,
		"department", b.Department,
		"category", b.Category,
		"allocated", b.Allocated)

	return b, nil
}

func (s *Service) GetBudgetsByFiscalYear(year int) ([]*BudgetItem, error) {
	budgets, err := s.repo.GetBudgetsByFiscalYear(year)
	if err != nil {
		s.logger.Error("failed to list budgets", "error", err, "fiscal_year", year)
		return nil, err
	}
	return budgets, nil
}

func (s *Service) UpdateBudget(id string, dto UpdateBudgetDTO) (*BudgetItem, error) {
	if err := dto.Validate(); err != nil {
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	b, err := s.repo.GetBudget(id)
	if err != nil {
		return nil, internalerrors.NewNotFoundError("budget item not found", internalerrors.ErrCodeValidationFailed)
	}

	if dto.Allocated != nil {
		b.Allocated = *dto.Allocated
		b.Remaining = b.Allocated - b.Spent
	}
	b.UpdatedAt = time.Now()

	if err := s.repo.UpdateBudget(b); err != nil {
		s.logger.Error("failed to update budget", "error", err, "budget_id", id)
		return nil, err
	}

	return b, nil
}

func (s *Service) DeleteBudget(id string) error {
	if _, err := s.repo.GetBudget(id); err != nil {
		return internalerrors.NewNotFoundError("budget item not found", internalerrors.ErrCodeValidationFailed)
	}
	return s.repo.DeleteBudget(id)
}

func (s *Service) CreateControl(dto CreateControlDTO) (*SpendingControl, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("control validation failed", "error", err)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	now := time.Now()
	c := &SpendingControl{
		ID:        uuid.NewString(),
		Type:      dto.Type,
		Target:    dto.Target,
		Limit:     dto.Limit,
		Period:    dto.Period,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateControl(c); err != nil {
		s.logger.Error("failed to create spending control", "error", err)
		return nil, err
	}

	s.logger.Info("spending control created",
		"control_id", c.ID,
		"type", c.Type,
		"target", c.Target,
		"limit", c.Limit)

	return c, nil
}

func (s *Service) ListControls() ([]*SpendingControl, error) {
	controls, err := s.repo.GetAllControls()
	if err != nil {
		s.logger.Error("failed to list spending controls", "error", err)
		return nil, err
	}
	return controls, nil
}

func (s *Service) UpdateControl(id string, dto UpdateControlDTO) (*SpendingControl, error) {
	if err := dto.Validate(); err != nil {
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	c, err := s.repo.GetControl(id)
	if err != nil {
		return nil, internalerrors.NewNotFoundError("spending control not found", internalerrors.ErrCodeValidationFailed)
	}

	if dto.Limit != nil {
		c.Limit = *dto.Limit
	}
	if dto.Active != nil {
		c.Active = *dto.Active
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.UpdateControl(c); err != nil {
		s.logger.Error("failed to update spending control", "error", err, "control_id", id)
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteControl(id string) error {
	if _, err := s.repo.GetControl(id); err != nil {
		return internalerrors.NewNotFoundError("spending control not found", internalerrors.ErrCodeValidationFailed)
	}
	return s.repo.DeleteControl(id)
}

// HandleBillSubmitted accumulates spend into matching budgets and active
// controls, emitting a breach event when a control's limit is crossed.
// Wired as an event-bus subscriber for bill.submitted.
func (s *Service) HandleBillSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(*events.BillSubmittedEvent)
	if !ok {
		return nil
	}

	s.applyToBudget(submitted)
	s.applyToControls(ctx, submitted)
	return nil
}

func (s *Service) applyToBudget(e *events.BillSubmittedEvent) {
	b, err := s.repo.GetBudgetByTarget(e.Category, e.Department, e.OccurredAt().Year())
	if err != nil {
		return
	}

	b.Spent += e.Amount
	b.Remaining = b.Allocated - b.Spent
	b.UpdatedAt = time.Now()

	if err := s.repo.UpdateBudget(b); err != nil {
		s.logger.Error("failed to record budget spend", "error", err, "budget_id", b.ID)
	}
}

func (s *Service) applyToControls(ctx context.Context, e *events.BillSubmittedEvent) {
	controls, err := s.repo.GetActiveControls()
	if err != nil {
		s.logger.Error("failed to load spending controls", "error", err)
		return
	}

	for _, c := range controls {
		if !c.Matches(e.Department, e.Category) {
			continue
		}

		wasUnder := c.CurrentSpend <= c.Limit
		c.CurrentSpend += e.Amount
		c.UpdatedAt = time.Now()

		if err := s.repo.UpdateControl(c); err != nil {
			s.logger.Error("failed to accumulate control spend", "error", err, "control_id", c.ID)
			continue
		}

		if wasUnder && c.CurrentSpend > c.Limit {
			s.logger.Warn("spending control breached",
				"control_id", c.ID,
				"target", c.Target,
				"limit", c.Limit,
				"current_spend", c.CurrentSpend)
			if s.eventBus != nil {
				s.eventBus.Publish(ctx, events.NewControlBreachedEvent(c.ID, c.Target, c.Limit, c.CurrentSpend))
			}
		}
	}
}
