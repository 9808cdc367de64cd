package analytics

import (
	"log/slog"
	"time"

	"github.com/xtractpay/xtractpay/internal/auth"
	"github.com/xtractpay/xtractpay/internal/bill"
)

// BillSource supplies the bills an analytics view aggregates over
type BillSource interface {
	GetAllBills() ([]*bill.Bill, error)
	GetManagerBills(managerID string) ([]*bill.Bill, error)
}

type Service struct {
	bills  BillSource
	logger *slog.Logger
}

func NewService(bills BillSource, logger *slog.Logger) *Service {
	return &Service{
		bills:  bills,
		logger: logger,
	}
}

// billsForViewer scopes the data set: admins aggregate over every bill,
// managers over their own employees' bills
func (s *Service) billsForViewer(viewer *auth.User) ([]*bill.Bill, error) {
	if viewer.Role == auth.RoleAdmin {
		return s.bills.GetAllBills()
	}
	return s.bills.GetManagerBills(viewer.ID)
}

func (s *Service) Summary(viewer *auth.User) (Summary, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for summary", "error", err, "viewer_id", viewer.ID)
		return Summary{}, err
	}
	return Summarize(bills), nil
}

func (s *Service) Departments(viewer *auth.User) ([]DepartmentRank, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for department ranking", "error", err, "viewer_id", viewer.ID)
		return nil, err
	}
	return DepartmentRanking(bills), nil
}

func (s *Service) Categories(viewer *auth.User) ([]CategoryInsight, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for category insights", "error", err, "viewer_id", viewer.ID)
		return nil, err
	}
	return CategoryInsights(bills), nil
}

func (s *Service) ValidationStats(viewer *auth.User) (ValidationStats, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for validation stats", "error", err, "viewer_id", viewer.ID)
		return ValidationStats{}, err
	}
	return Validation(bills), nil
}

func (s *Service) TopVendors(viewer *auth.User, n int) ([]VendorStats, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for vendor ranking", "error", err, "viewer_id", viewer.ID)
		return nil, err
	}
	return TopVendors(bills, n), nil
}

func (s *Service) Trends(viewer *auth.User) (Trends, error) {
	bills, err := s.billsForViewer(viewer)
	if err != nil {
		s.logger.Error("failed to load bills for trends", "error", err, "viewer_id", viewer.ID)
		return Trends{}, err
	}

	summary := Summarize(bills)
	return Trends{
		Monthly:        summary.MonthlyTrend,
		DayOfWeek:      DayOfWeekSpending(bills),
		MonthOverMonth: MonthOverMonth(bills, time.Now()),
		Forecast:       ForecastNextMonth(bills),
	}, nil
}
