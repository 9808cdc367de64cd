package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xtractpay/xtractpay/internal/core/events"
)

type Repository interface {
	CreateEntry(e *Entry) error
	ListEntries(limit int) ([]*Entry, error)
	CreateAlert(a *Alert) error
	ListAlerts(limit int) ([]*Alert, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Record appends an entry to the activity log.
func (s *Service) Record(entryType, actor string, details Details) error {
	entry := &Entry{
		ID:        uuid.New().String(),
		Type:      entryType,
		Actor:     actor,
		Details:   details,
		Timestamp: time.Now(),
	}
	if err := s.repo.CreateEntry(entry); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (s *Service) ListRecent(limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListEntries(limit)
}

func (s *Service) RecordAlert(alertType, message string) error {
	alert := &Alert{
		ID:        uuid.New().String(),
		Type:      alertType,
		Message:   message,
		Timestamp: time.Now(),
	}
	if err := s.repo.CreateAlert(alert); err != nil {
		return fmt.Errorf("failed to record alert: %w", err)
	}
	return nil
}

func (s *Service) ListAlerts(limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListAlerts(limit)
}

// RegisterSubscribers wires the activity log into the event bus so every
// domain event leaves a trace without the publishing services knowing
// about this package.
func (s *Service) RegisterSubscribers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeBillSubmitted, s.handleBillSubmitted)
	bus.Subscribe(events.EventTypeBillApproved, s.handleBillApproved)
	bus.Subscribe(events.EventTypeBillRejected, s.handleBillRejected)
	bus.Subscribe(events.EventTypeGrievanceFiled, s.handleGrievanceFiled)
	bus.Subscribe(events.EventTypeControlBreached, s.handleControlBreached)
}

func (s *Service) handleBillSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.BillSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.Record(events.EventTypeBillSubmitted, e.EmployeeID, Details{
		"doc_id": e.DocID,
		"vendor": e.Vendor,
		"amount": e.Amount,
	})
}

func (s *Service) handleBillApproved(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.BillApprovedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.Record(events.EventTypeBillApproved, e.ApprovedBy, Details{
		"doc_id":      e.DocID,
		"employee_id": e.EmployeeID,
		"amount":      e.Amount,
	})
}

func (s *Service) handleBillRejected(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.BillRejectedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.Record(events.EventTypeBillRejected, e.RejectedBy, Details{
		"doc_id":      e.DocID,
		"employee_id": e.EmployeeID,
		"reason":      e.Reason,
	})
}

func (s *Service) handleGrievanceFiled(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.GrievanceFiledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	return s.Record(events.EventTypeGrievanceFiled, e.EmployeeID, Details{
		"grievance_id": e.GrievanceID,
		"category":     e.Category,
	})
}

func (s *Service) handleControlBreached(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ControlBreachedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	if err := s.Record(events.EventTypeControlBreached, "system", Details{
		"control_id":    e.ControlID,
		"target":        e.Target,
		"limit":         e.Limit,
		"current_spend": e.CurrentSpend,
	}); err != nil {
		return err
	}

	message := fmt.Sprintf("spending control %s breached for %s: %.2f over limit %.2f",
		e.ControlID, e.Target, e.CurrentSpend, e.Limit)
	return s.RecordAlert(AlertTypeWarning, message)
}
