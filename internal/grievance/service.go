package grievance

import (
	"context"
	"log/slog"
	"time"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/core/events"
)

// Repository defines the data access methods for grievances
type Repository interface {
	Create(g *Grievance) error
	GetByID(id string) (*Grievance, error)
	GetByEmployeeID(employeeID string) ([]*Grievance, error)
	GetAll() ([]*Grievance, error)
	Count() (int64, error)
	Update(g *Grievance) error
}

// EventPublisher fans grievance lifecycle events out to subscribers
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

// FileGrievance creates a pending grievance with a count-derived id
func (s *Service) FileGrievance(employeeID string, dto CreateGrievanceDTO) (*Grievance, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("grievance validation failed", "error", err, "employee_id", employeeID)
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	count, err := s.repo.Count()
	if err != nil {
		s.logger.Error("failed to count grievances", "error", err)
		return nil, err
	}

	now := time.Now()
	g := &Grievance{
		ID:          NextID(count),
		EmployeeID:  employeeID,
		BillID:      dto.BillID,
		Category:    dto.Category,
		Description: dto.Description,
		Status:      StatusPending,
		Attachments: Attachments(dto.Attachments),
		SubmittedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(g); err != nil {
		s.logger.Error("failed to create grievance", "error", err, "grievance_id", g.ID)
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(context.Background(), events.NewGrievanceFiledEvent(g.ID, employeeID, g.Category))
	}

	s.logger.Info("grievance filed",
		"grievance_id", g.ID,
		"employee_id", employeeID,
		"bill_id", g.BillID)

	return g, nil
}

// GetGrievance retrieves a grievance, restricting employees to their own
func (s *Service) GetGrievance(id, requesterID string, canViewAll bool) (*Grievance, error) {
	g, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get grievance", "error", err, "grievance_id", id)
		return nil, internalerrors.ErrGrievanceNotFound
	}

	if !canViewAll && g.EmployeeID != requesterID {
		s.logger.Warn("unauthorized access to grievance", "grievance_id", id, "requester_id", requesterID)
		return nil, internalerrors.ErrUnauthorizedAccess
	}

	return g, nil
}

// GetEmployeeGrievances lists one employee's grievances, newest first
func (s *Service) GetEmployeeGrievances(employeeID string) ([]*Grievance, error) {
	grievances, err := s.repo.GetByEmployeeID(employeeID)
	if err != nil {
		s.logger.Error("failed to get employee grievances", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return grievances, nil
}

// GetAllGrievances lists every grievance for manager and admin review
func (s *Service) GetAllGrievances() ([]*Grievance, error) {
	grievances, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get all grievances", "error", err)
		return nil, err
	}
	return grievances, nil
}

// ResolveGrievance closes a pending grievance with an outcome
func (s *Service) ResolveGrievance(id, resolverID string, dto ResolveGrievanceDTO) (*Grievance, error) {
	if err := dto.Validate(); err != nil {
		return nil, internalerrors.NewValidationError(err.Error(), internalerrors.ErrCodeValidationFailed)
	}

	g, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("grievance not found for resolution", "error", err, "grievance_id", id)
		return nil, internalerrors.ErrGrievanceNotFound
	}

	if !g.CanBeResolved() {
		s.logger.Warn("cannot resolve grievance in current status",
			"grievance_id", id,
			"current_status", g.Status)
		return nil, internalerrors.NewValidationError("grievance is already closed", internalerrors.ErrCodeValidationFailed)
	}

	now := time.Now()
	g.Status = dto.Status
	g.Resolution = &dto.Resolution
	g.ResolvedAt = &now
	g.UpdatedAt = now

	if err := s.repo.Update(g); err != nil {
		s.logger.Error("failed to resolve grievance", "error", err, "grievance_id", id)
		return nil, err
	}

	s.logger.Info("grievance closed",
		"grievance_id", id,
		"status", dto.Status,
		"resolved_by", resolverID)

	return g, nil
}
