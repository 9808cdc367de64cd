package bill

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// FlexAmount accepts a JSON number or a formatted string like "$1,250.00"
type FlexAmount float64

func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*a = FlexAmount(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("amount must be a number or a numeric string")
	}

	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		*a = 0
		return nil
	}

	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return errors.New("amount must be a number or a numeric string")
	}
	*a = FlexAmount(num)
	return nil
}

// FlexDate accepts the extraction pipeline's bare "2006-01-02" dates as
// well as RFC3339 timestamps. Empty or null decodes to the zero time.
type FlexDate time.Time

func (d *FlexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("date must be a string")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		*d = FlexDate(time.Time{})
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = FlexDate(t)
			return nil
		}
	}
	return errors.New("date must be YYYY-MM-DD or RFC3339")
}

func (d FlexDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d))
}

func (d FlexDate) Time() time.Time {
	return time.Time(d)
}

// SubmitBillDTO is the authenticated submission payload
type SubmitBillDTO struct {
	Vendor           string           `json:"vendor"`
	BillNumber       string           `json:"bill_number"`
	Amount           FlexAmount       `json:"amount"`
	Category         string           `json:"category"`
	Department       string           `json:"department"`
	Description      string           `json:"description"`
	PaymentType      string           `json:"payment_type"`
	GSTNumber        string           `json:"gstno"`
	ExpenseDate      FlexDate         `json:"expense_date"`
	ValidationResult ValidationResult `json:"validation_result"`
}

func (dto SubmitBillDTO) Validate() error {
	if dto.Vendor == "" {
		return errors.New("vendor is required")
	}
	if dto.BillNumber == "" {
		return errors.New("bill number is required")
	}
	if dto.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

// IngestExpenseDTO is the flattened payload from the extraction pipeline,
// keyed by the submitter's phone number instead of an authenticated session
type IngestExpenseDTO struct {
	PhoneNumber      string           `json:"phone_number"`
	Vendor           string           `json:"vendor_name"`
	BillNumber       string           `json:"bill_id"`
	Amount           FlexAmount       `json:"amount"`
	Category         string           `json:"category"`
	Department       string           `json:"department"`
	Description      string           `json:"description"`
	PaymentType      string           `json:"payment_type"`
	GSTNumber        string           `json:"gstno"`
	ExpenseDate      FlexDate         `json:"expense_date"`
	SubmissionDate   FlexDate         `json:"submission_date"`
	ValidationResult ValidationResult `json:"validation_result"`
}

func (dto IngestExpenseDTO) Validate() error {
	if dto.PhoneNumber == "" {
		return errors.New("phone number is required")
	}
	if dto.Vendor == "" {
		return errors.New("vendor name is required")
	}
	if dto.BillNumber == "" {
		return errors.New("bill id is required")
	}
	if dto.Amount < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

// RejectBillDTO carries the mandatory rejection reason
type RejectBillDTO struct {
	Reason string `json:"reason"`
}

func (dto RejectBillDTO) Validate() error {
	if dto.Reason == "" {
		return errors.New("reason is required when rejecting a bill")
	}
	return nil
}

// UpdateBillDTO lets admins correct administrative fields
type UpdateBillDTO struct {
	Category    *string `json:"category,omitempty"`
	Department  *string `json:"department,omitempty"`
	Description *string `json:"description,omitempty"`
	IsFlagged   *bool   `json:"is_flagged,omitempty"`
}

// IngestResult is returned to the extraction pipeline on success
type IngestResult struct {
	DocID      string `json:"doc_id"`
	EmployeeID string `json:"employee_id"`
}
