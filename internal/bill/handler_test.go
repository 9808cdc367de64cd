package bill_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internalerrors "github.com/xtractpay/xtractpay/internal"
	"github.com/xtractpay/xtractpay/internal/bill"
)

// mockBillService stubs the handler-facing API
type mockBillService struct {
	ingestResult *bill.IngestResult
	ingestErr    error
	lastIngest   bill.IngestExpenseDTO
}

func (m *mockBillService) SubmitBill(employeeID string, dto bill.SubmitBillDTO) (*bill.Bill, error) {
	return nil, nil
}

func (m *mockBillService) IngestExpense(dto bill.IngestExpenseDTO) (*bill.IngestResult, error) {
	m.lastIngest = dto
	if m.ingestErr != nil {
		return nil, m.ingestErr
	}
	return m.ingestResult, nil
}

func (m *mockBillService) GetBill(id, requesterID string, canViewAll bool) (*bill.Bill, error) {
	return nil, nil
}
func (m *mockBillService) GetEmployeeBills(employeeID string) ([]*bill.Bill, error) {
	return nil, nil
}
func (m *mockBillService) GetManagerBills(managerID string) ([]*bill.Bill, error) {
	return nil, nil
}
func (m *mockBillService) GetAllBills() ([]*bill.Bill, error)     { return nil, nil }
func (m *mockBillService) GetFlaggedBills() ([]*bill.Bill, error) { return nil, nil }
func (m *mockBillService) ApproveBill(billID, approverID string) (*bill.Bill, error) {
	return nil, nil
}
func (m *mockBillService) RejectBill(billID, rejecterID, reason string) (*bill.Bill, error) {
	return nil, nil
}
func (m *mockBillService) UpdateBill(billID, editorID string, dto bill.UpdateBillDTO) (*bill.Bill, error) {
	return nil, nil
}

var _ = Describe("BillHandler ingest endpoint", func() {
	var (
		handler *bill.Handler
		service *mockBillService
	)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/send-expense", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		handler.IngestExpense(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	BeforeEach(func() {
		service = &mockBillService{
			ingestResult: &bill.IngestResult{DocID: "staples-123", EmployeeID: "emp_1"},
		}
		handler = bill.NewHandler(service)
	})

	It("should answer 200 with the document id on success", func() {
		rec := post(`{"phone_number":"+15550102","vendor_name":"Staples","bill_id":"123","amount":100}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		body := decode(rec)
		Expect(body["success"]).To(BeTrue())
		data := body["data"].(map[string]interface{})
		Expect(data["doc_id"]).To(Equal("staples-123"))
		Expect(data["employee_id"]).To(Equal("emp_1"))
	})

	It("should accept the pipeline's bare expense date", func() {
		rec := post(`{"phone_number":"+15550102","vendor_name":"Staples","bill_id":"123","amount":"100","expense_date":"2024-02-08","submission_date":"2024-02-09"}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(service.lastIngest.ExpenseDate.Time()).To(Equal(time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC)))
		Expect(service.lastIngest.SubmissionDate.Time()).To(Equal(time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)))
	})

	It("should accept a formatted string amount", func() {
		rec := post(`{"phone_number":"+15550102","vendor_name":"Staples","bill_id":"123","amount":"$1,250.00"}`)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(float64(service.lastIngest.Amount)).To(Equal(1250.0))
	})

	It("should answer 400 for a missing phone number", func() {
		service.ingestErr = internalerrors.NewValidationError("phone number is required", internalerrors.ErrCodeMissingPhone)

		rec := post(`{"vendor_name":"Staples","bill_id":"123","amount":100}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		body := decode(rec)
		Expect(body["success"]).To(BeFalse())
		Expect(body).NotTo(HaveKey("error"))
	})

	It("should answer 404 for an unknown phone number", func() {
		service.ingestErr = internalerrors.ErrEmployeeNotFound

		rec := post(`{"phone_number":"+19999999","vendor_name":"Staples","bill_id":"123","amount":100}`)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(decode(rec)["success"]).To(BeFalse())
	})

	It("should answer 500 with the error detail on persistence failure", func() {
		service.ingestErr = internalerrors.NewInternalError("failed to save expense", nil)

		rec := post(`{"phone_number":"+15550102","vendor_name":"Staples","bill_id":"123","amount":100}`)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		body := decode(rec)
		Expect(body["success"]).To(BeFalse())
		Expect(body).To(HaveKey("error"))
	})

	It("should answer 400 for a malformed body", func() {
		rec := post(`{not json`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(rec)["success"]).To(BeFalse())
	})

	It("should answer 405 on the method-not-allowed handler", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/send-expense", nil)
		rec := httptest.NewRecorder()
		handler.MethodNotAllowed(rec, req)

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(decode(rec)["success"]).To(BeFalse())
	})
})
