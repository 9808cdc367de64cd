package bill_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/bill"
	"github.com/xtractpay/xtractpay/internal/core/events"
)

func TestBill(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bill Suite")
}

// Mock repository for testing
type mockBillRepository struct {
	bills       map[string]*bill.Bill
	createError error
	updateError error
}

func newMockBillRepository() *mockBillRepository {
	return &mockBillRepository{bills: make(map[string]*bill.Bill)}
}

func (m *mockBillRepository) Create(b *bill.Bill) error {
	if m.createError != nil {
		return m.createError
	}
	m.bills[b.ID] = b
	return nil
}

func (m *mockBillRepository) GetByID(id string) (*bill.Bill, error) {
	b, exists := m.bills[id]
	if !exists {
		return nil, bill.ErrBillNotFound
	}
	return b, nil
}

func (m *mockBillRepository) GetByEmployeeID(employeeID string) ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range m.bills {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBillRepository) GetByEmployeeIDs(employeeIDs []string) ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range m.bills {
		for _, id := range employeeIDs {
			if b.EmployeeID == id {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (m *mockBillRepository) GetAll() ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range m.bills {
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBillRepository) GetFlagged() ([]*bill.Bill, error) {
	var out []*bill.Bill
	for _, b := range m.bills {
		if b.IsFlagged {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBillRepository) Update(b *bill.Bill) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.bills[b.ID] = b
	return nil
}

// Mock employee directory
type mockDirectory struct {
	byPhone map[string]string
	managed map[string][]string
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		byPhone: make(map[string]string),
		managed: make(map[string][]string),
	}
}

func (m *mockDirectory) EmployeeIDByPhone(phone string) (string, error) {
	id, ok := m.byPhone[phone]
	if !ok {
		return "", errors.New("no employee for phone")
	}
	return id, nil
}

func (m *mockDirectory) ManagedEmployeeIDs(managerID string) ([]string, error) {
	return m.managed[managerID], nil
}

// Mock notifier records enqueued summaries
type mockNotifier struct {
	enqueued []*bill.Bill
}

func (m *mockNotifier) EnqueueSummary(b *bill.Bill) {
	m.enqueued = append(m.enqueued, b)
}

// Mock event publisher records published events
type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("BillService", func() {
	var (
		service   *bill.Service
		mockRepo  *mockBillRepository
		directory *mockDirectory
		notifier  *mockNotifier
		publisher *mockPublisher
		logger    *slog.Logger
	)

	BeforeEach(func() {
		mockRepo = newMockBillRepository()
		directory = newMockDirectory()
		notifier = &mockNotifier{}
		publisher = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = bill.NewService(mockRepo, directory, notifier, publisher, logger)
	})

	Describe("IngestExpense", func() {
		Context("when the phone number is missing", func() {
			It("should return a validation error and persist nothing", func() {
				dto := bill.IngestExpenseDTO{
					Vendor:     "Staples",
					BillNumber: "123",
					Amount:     100,
				}

				result, err := service.IngestExpense(dto)

				Expect(result).To(BeNil())
				appErr, ok := internalerrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internalerrors.ErrCodeMissingPhone))
				Expect(mockRepo.bills).To(BeEmpty())
			})
		})

		Context("when no employee matches the phone number", func() {
			It("should return employee-not-found and persist nothing", func() {
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550199",
					Vendor:      "Staples",
					BillNumber:  "123",
					Amount:      100,
				}

				result, err := service.IngestExpense(dto)

				Expect(result).To(BeNil())
				Expect(errors.Is(err, internalerrors.ErrEmployeeNotFound)).To(BeTrue())
				Expect(mockRepo.bills).To(BeEmpty())
			})
		})

		Context("when the submitter is known", func() {
			BeforeEach(func() {
				directory.byPhone["+15550102"] = "emp_1"
			})

			It("should persist the bill under its derived document id", func() {
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550102",
					Vendor:      "Staples",
					BillNumber:  "123",
					Amount:      250.50,
					Category:    "Office Supplies",
				}

				result, err := service.IngestExpense(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.DocID).To(Equal("staples-123"))
				Expect(result.EmployeeID).To(Equal("emp_1"))

				saved := mockRepo.bills["staples-123"]
				Expect(saved).ToNot(BeNil())
				Expect(saved.Status).To(Equal(bill.StatusPending))
				Expect(saved.Amount).To(Equal(250.50))
				Expect(saved.AuditHistory).To(HaveLen(1))
				Expect(saved.AuditHistory[0].Action).To(Equal("submitted"))
			})

			It("should collapse vendor whitespace into hyphens in the document id", func() {
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550102",
					Vendor:      "Office  Depot",
					BillNumber:  "456",
					Amount:      75,
				}

				result, err := service.IngestExpense(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.DocID).To(Equal("office-depot-456"))
			})

			It("should flag the bill when validation failed with a reason", func() {
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550102",
					Vendor:      "Staples",
					BillNumber:  "777",
					Amount:      90,
					ValidationResult: bill.ValidationResult{
						BillValid: false,
						Reason:    "gst number mismatch",
					},
				}

				result, err := service.IngestExpense(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(mockRepo.bills[result.DocID].IsFlagged).To(BeTrue())
			})

			It("should publish a submitted event and enqueue a summary", func() {
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550102",
					Vendor:      "Staples",
					BillNumber:  "123",
					Amount:      100,
					Department:  "Engineering",
				}

				_, err := service.IngestExpense(dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(publisher.published).To(HaveLen(1))
				Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeBillSubmitted))
				Expect(notifier.enqueued).To(HaveLen(1))
			})

			It("should wrap persistence failures as internal errors", func() {
				mockRepo.createError = errors.New("connection reset")
				dto := bill.IngestExpenseDTO{
					PhoneNumber: "+15550102",
					Vendor:      "Staples",
					BillNumber:  "123",
					Amount:      100,
				}

				result, err := service.IngestExpense(dto)

				Expect(result).To(BeNil())
				appErr, ok := internalerrors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.StatusCode).To(Equal(500))
			})
		})
	})

	Describe("SubmitBill", func() {
		It("should reject a payload without a vendor", func() {
			dto := bill.SubmitBillDTO{BillNumber: "123", Amount: 100}

			result, err := service.SubmitBill("emp_1", dto)

			Expect(result).To(BeNil())
			Expect(err).To(HaveOccurred())
			Expect(mockRepo.bills).To(BeEmpty())
		})

		It("should create a pending bill for the employee", func() {
			dto := bill.SubmitBillDTO{
				Vendor:     "Delta",
				BillNumber: "TK99",
				Amount:     1200,
				Category:   "Travel",
			}

			result, err := service.SubmitBill("emp_1", dto)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.ID).To(Equal("delta-TK99"))
			Expect(result.EmployeeID).To(Equal("emp_1"))
			Expect(result.Status).To(Equal(bill.StatusPending))
		})
	})

	Describe("ApproveBill", func() {
		BeforeEach(func() {
			directory.byPhone["+15550102"] = "emp_1"
			_, err := service.IngestExpense(bill.IngestExpenseDTO{
				PhoneNumber: "+15550102",
				Vendor:      "Staples",
				BillNumber:  "123",
				Amount:      100,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should approve a pending bill and append to the audit history", func() {
			b, err := service.ApproveBill("staples-123", "man_1")

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Status).To(Equal(bill.StatusApproved))
			Expect(b.AuditHistory).To(HaveLen(2))
			Expect(b.AuditHistory[1].Action).To(Equal("approved"))
			Expect(b.AuditHistory[1].User).To(Equal("man_1"))
		})

		It("should refuse to approve a bill that is not pending", func() {
			_, err := service.ApproveBill("staples-123", "man_1")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ApproveBill("staples-123", "man_2")
			Expect(errors.Is(err, internalerrors.ErrInvalidBillStatus)).To(BeTrue())
		})

		It("should return not-found for an unknown bill", func() {
			_, err := service.ApproveBill("nope-0", "man_1")
			Expect(errors.Is(err, internalerrors.ErrBillNotFound)).To(BeTrue())
		})
	})

	Describe("RejectBill", func() {
		BeforeEach(func() {
			directory.byPhone["+15550102"] = "emp_1"
			_, err := service.IngestExpense(bill.IngestExpenseDTO{
				PhoneNumber: "+15550102",
				Vendor:      "Staples",
				BillNumber:  "123",
				Amount:      100,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should refuse rejection without a reason and leave the bill untouched", func() {
			_, err := service.RejectBill("staples-123", "man_1", "")

			appErr, ok := internalerrors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internalerrors.ErrCodeMissingReason))
			Expect(mockRepo.bills["staples-123"].Status).To(Equal(bill.StatusPending))
		})

		It("should reject a pending bill and record the reason", func() {
			b, err := service.RejectBill("staples-123", "man_1", "duplicate claim")

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Status).To(Equal(bill.StatusRejected))
			Expect(*b.RejectionReason).To(Equal("duplicate claim"))
			Expect(b.AuditHistory[len(b.AuditHistory)-1].Action).To(Equal("rejected"))
		})
	})

	Describe("GetBill", func() {
		BeforeEach(func() {
			directory.byPhone["+15550102"] = "emp_1"
			_, err := service.IngestExpense(bill.IngestExpenseDTO{
				PhoneNumber: "+15550102",
				Vendor:      "Staples",
				BillNumber:  "123",
				Amount:      100,
			})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should let the owner read their own bill", func() {
			b, err := service.GetBill("staples-123", "emp_1", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(b.ID).To(Equal("staples-123"))
		})

		It("should deny another employee without view-all", func() {
			_, err := service.GetBill("staples-123", "emp_2", false)
			Expect(errors.Is(err, internalerrors.ErrUnauthorizedAccess)).To(BeTrue())
		})

		It("should allow a privileged viewer", func() {
			b, err := service.GetBill("staples-123", "man_1", true)
			Expect(err).ToNot(HaveOccurred())
			Expect(b).ToNot(BeNil())
		})
	})

	Describe("GetManagerBills", func() {
		It("should scope results to the manager's employees", func() {
			directory.byPhone["+1"] = "emp_1"
			directory.byPhone["+2"] = "emp_2"
			directory.managed["man_1"] = []string{"emp_1"}

			_, err := service.IngestExpense(bill.IngestExpenseDTO{PhoneNumber: "+1", Vendor: "A", BillNumber: "1", Amount: 10})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.IngestExpense(bill.IngestExpenseDTO{PhoneNumber: "+2", Vendor: "B", BillNumber: "2", Amount: 20})
			Expect(err).ToNot(HaveOccurred())

			bills, err := service.GetManagerBills("man_1")
			Expect(err).ToNot(HaveOccurred())
			Expect(bills).To(HaveLen(1))
			Expect(bills[0].EmployeeID).To(Equal("emp_1"))
		})

		It("should return an empty slice for a manager with no employees", func() {
			bills, err := service.GetManagerBills("man_9")
			Expect(err).ToNot(HaveOccurred())
			Expect(bills).To(BeEmpty())
		})
	})
})
