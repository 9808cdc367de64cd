package bill_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/xtractpay/xtractpay/internal/bill"
)

var _ = Describe("FlexAmount", func() {
	unmarshal := func(raw string) (bill.FlexAmount, error) {
		var a bill.FlexAmount
		err := json.Unmarshal([]byte(raw), &a)
		return a, err
	}

	It("should accept a plain JSON number", func() {
		a, err := unmarshal(`1250.5`)
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(a)).To(Equal(1250.5))
	})

	It("should accept a formatted currency string", func() {
		a, err := unmarshal(`"$1,250.00"`)
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(a)).To(Equal(1250.0))
	})

	It("should trim surrounding whitespace", func() {
		a, err := unmarshal(`" 42.50 "`)
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(a)).To(Equal(42.5))
	})

	It("should treat an empty string as zero", func() {
		a, err := unmarshal(`""`)
		Expect(err).NotTo(HaveOccurred())
		Expect(float64(a)).To(Equal(0.0))
	})

	It("should reject a non-numeric string", func() {
		_, err := unmarshal(`"abc"`)
		Expect(err).To(HaveOccurred())
	})

	It("should reject other JSON types", func() {
		_, err := unmarshal(`true`)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FlexDate", func() {
	unmarshal := func(raw string) (bill.FlexDate, error) {
		var d bill.FlexDate
		err := json.Unmarshal([]byte(raw), &d)
		return d, err
	}

	It("should accept a bare YYYY-MM-DD date", func() {
		d, err := unmarshal(`"2024-02-08"`)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Time()).To(Equal(time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC)))
	})

	It("should accept an RFC3339 timestamp", func() {
		d, err := unmarshal(`"2024-02-08T09:30:00Z"`)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Time()).To(Equal(time.Date(2024, 2, 8, 9, 30, 0, 0, time.UTC)))
	})

	It("should treat an empty string as the zero time", func() {
		d, err := unmarshal(`""`)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Time().IsZero()).To(BeTrue())
	})

	It("should treat null as the zero time", func() {
		d, err := unmarshal(`null`)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Time().IsZero()).To(BeTrue())
	})

	It("should reject an unparseable date", func() {
		_, err := unmarshal(`"02/08/2024"`)
		Expect(err).To(HaveOccurred())
	})

	It("should decode the pipeline's flattened payload", func() {
		raw := `{"phone_number":"+15550102","vendor_name":"Staples","bill_id":"123",` +
			`"amount":"100","expense_date":"2024-02-08","submission_date":"2024-02-09"}`

		var dto bill.IngestExpenseDTO
		Expect(json.Unmarshal([]byte(raw), &dto)).To(Succeed())
		Expect(dto.ExpenseDate.Time()).To(Equal(time.Date(2024, 2, 8, 0, 0, 0, 0, time.UTC)))
		Expect(dto.SubmissionDate.Time()).To(Equal(time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC)))
		Expect(float64(dto.Amount)).To(Equal(100.0))
	})
})

var _ = Describe("DocID", func() {
	It("should lowercase the vendor and join with the bill number", func() {
		Expect(bill.DocID("Staples", "123")).To(Equal("staples-123"))
	})

	It("should collapse whitespace runs into single hyphens", func() {
		Expect(bill.DocID("Office  Depot", "456")).To(Equal("office-depot-456"))
	})

	It("should leave the bill number untouched", func() {
		Expect(bill.DocID("Delta", "TK99")).To(Equal("delta-TK99"))
	})
})
