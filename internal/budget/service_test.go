package budget_test

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/budget"
	"github.com/xtractpay/xtractpay/internal/core/events"
)

func TestBudget(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Budget Suite")
}

type mockBudgetRepository struct {
	budgets  map[string]*budget.BudgetItem
	controls map[string]*budget.SpendingControl
}

func newMockBudgetRepository() *mockBudgetRepository {
	return &mockBudgetRepository{
		budgets:  make(map[string]*budget.BudgetItem),
		controls: make(map[string]*budget.SpendingControl),
	}
}

func (m *mockBudgetRepository) CreateBudget(b *budget.BudgetItem) error {
	m.budgets[b.ID] = b
	return nil
}

func (m *mockBudgetRepository) GetBudget(id string) (*budget.BudgetItem, error) {
	b, ok := m.budgets[id]
	if !ok {
		return nil, budget.ErrBudgetNotFound
	}
	return b, nil
}

func (m *mockBudgetRepository) GetBudgetsByFiscalYear(year int) ([]*budget.BudgetItem, error) {
	var out []*budget.BudgetItem
	for _, b := range m.budgets {
		if b.FiscalYear == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBudgetRepository) GetBudgetByTarget(category, department string, year int) (*budget.BudgetItem, error) {
	for _, b := range m.budgets {
		if b.Category == category && b.Department == department && b.FiscalYear == year {
			return b, nil
		}
	}
	return nil, budget.ErrBudgetNotFound
}

func (m *mockBudgetRepository) UpdateBudget(b *budget.BudgetItem) error {
	m.budgets[b.ID] = b
	return nil
}

func (m *mockBudgetRepository) DeleteBudget(id string) error {
	delete(m.budgets, id)
	return nil
}

func (m *mockBudgetRepository) CreateControl(c *budget.SpendingControl) error {
	m.controls[c.ID] = c
	return nil
}

func (m *mockBudgetRepository) GetControl(id string) (*budget.SpendingControl, error) {
	c, ok := m.controls[id]
	if !ok {
		return nil, budget.ErrControlNotFound
	}
	return c, nil
}

func (m *mockBudgetRepository) GetActiveControls() ([]*budget.SpendingControl, error) {
	var out []*budget.SpendingControl
	for _, c := range m.controls {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockBudgetRepository) GetAllControls() ([]*budget.SpendingControl, error) {
	var out []*budget.SpendingControl
	for _, c := range m.controls {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockBudgetRepository) UpdateControl(c *budget.SpendingControl) error {
	m.controls[c.ID] = c
	return nil
}

func (m *mockBudgetRepository) DeleteControl(id string) error {
	delete(m.controls, id)
	return nil
}

type mockBudgetPublisher struct {
	published []events.Event
}

func (m *mockBudgetPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("BudgetService", func() {
	var (
		service   *budget.Service
		repo      *mockBudgetRepository
		publisher *mockBudgetPublisher
	)

	BeforeEach(func() {
		repo = newMockBudgetRepository()
		publisher = &mockBudgetPublisher{}
		service = budget.NewService(repo, publisher, slog.Default())
	})

	Describe("CreateBudget", func() {
		It("should set remaining to the full allocation", func() {
			b, err := service.CreateBudget(budget.CreateBudgetDTO{
				Category:   "Travel",
				Department: "Sales",
				Allocated:  50000,
				FiscalYear: 2026,
				Quarter:    1,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.Remaining).To(Equal(50000.0))
			Expect(b.Spent).To(BeZero())
		})

		It("should reject a quarter outside 1 to 4", func() {
			_, err := service.CreateBudget(budget.CreateBudgetDTO{
				Category:   "Travel",
				Department: "Sales",
				Allocated:  50000,
				FiscalYear: 2026,
				Quarter:    5,
			})

			Expect(err).To(HaveOccurred())
			_, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("UpdateBudget", func() {
		It("should recompute remaining against recorded spend", func() {
			b, err := service.CreateBudget(budget.CreateBudgetDTO{
				Category:   "Travel",
				Department: "Sales",
				Allocated:  50000,
				FiscalYear: 2026,
				Quarter:    1,
			})
			Expect(err).NotTo(HaveOccurred())
			b.Spent = 10000

			newAllocation := 30000.0
			updated, err := service.UpdateBudget(b.ID, budget.UpdateBudgetDTO{Allocated: &newAllocation})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Remaining).To(Equal(20000.0))
		})
	})

	Describe("HandleBillSubmitted", func() {
		var controlID string

		BeforeEach(func() {
			_, err := service.CreateBudget(budget.CreateBudgetDTO{
				Category:   "Travel",
				Department: "Sales",
				Allocated:  50000,
				FiscalYear: 2026,
				Quarter:    1,
			})
			Expect(err).NotTo(HaveOccurred())

			c, err := service.CreateControl(budget.CreateControlDTO{
				Type:   budget.ControlTypeDepartment,
				Target: "Sales",
				Limit:  1000,
				Period: budget.PeriodMonthly,
			})
			Expect(err).NotTo(HaveOccurred())
			controlID = c.ID
		})

		It("should accumulate spend into the matching budget", func() {
			event := events.NewBillSubmittedEvent("delta-TK99", "emp_1", "Delta", 800, "Travel", "Sales")

			Expect(service.HandleBillSubmitted(context.Background(), event)).To(Succeed())

			b, err := repo.GetBudgetByTarget("Travel", "Sales", event.OccurredAt().Year())
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Spent).To(Equal(800.0))
			Expect(b.Remaining).To(Equal(49200.0))
		})

		It("should not publish a breach while under the limit", func() {
			event := events.NewBillSubmittedEvent("delta-TK99", "emp_1", "Delta", 800, "Travel", "Sales")

			Expect(service.HandleBillSubmitted(context.Background(), event)).To(Succeed())

			Expect(publisher.published).To(BeEmpty())
		})

		It("should publish a breach exactly once when the limit is crossed", func() {
			first := events.NewBillSubmittedEvent("delta-TK99", "emp_1", "Delta", 800, "Travel", "Sales")
			second := events.NewBillSubmittedEvent("hilton-88", "emp_2", "Hilton", 500, "Lodging", "Sales")
			third := events.NewBillSubmittedEvent("uber-12", "emp_1", "Uber", 50, "Travel", "Sales")

			Expect(service.HandleBillSubmitted(context.Background(), first)).To(Succeed())
			Expect(service.HandleBillSubmitted(context.Background(), second)).To(Succeed())
			Expect(service.HandleBillSubmitted(context.Background(), third)).To(Succeed())

			Expect(publisher.published).To(HaveLen(1))
			breach, ok := publisher.published[0].(*events.ControlBreachedEvent)
			Expect(ok).To(BeTrue())
			Expect(breach.ControlID).To(Equal(controlID))
			Expect(breach.CurrentSpend).To(Equal(1300.0))
		})

		It("should skip controls targeting a different department", func() {
			event := events.NewBillSubmittedEvent("delta-TK99", "emp_1", "Delta", 2000, "Travel", "Engineering")

			Expect(service.HandleBillSubmitted(context.Background(), event)).To(Succeed())

			c, err := repo.GetControl(controlID)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.CurrentSpend).To(BeZero())
			Expect(publisher.published).To(BeEmpty())
		})

		It("should ignore an inactive control", func() {
			inactive := false
			_, err := service.UpdateControl(controlID, budget.UpdateControlDTO{Active: &inactive})
			Expect(err).NotTo(HaveOccurred())

			event := events.NewBillSubmittedEvent("delta-TK99", "emp_1", "Delta", 5000, "Travel", "Sales")
			Expect(service.HandleBillSubmitted(context.Background(), event)).To(Succeed())

			Expect(publisher.published).To(BeEmpty())
		})
	})
})
