package bill

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Bill represents a submitted expense bill
type Bill struct {
	ID               string           `json:"id" gorm:"primaryKey;column:bill_id"`
	EmployeeID       string           `json:"employee_id" gorm:"column:employee_id;not null;index"`
	Vendor           string           `json:"vendor" gorm:"not null"`
	BillNumber       string           `json:"bill_number" gorm:"column:bill_number;not null"`
	Amount           float64          `json:"amount" gorm:"not null"`
	Category         string           `json:"category"`
	Department       string           `json:"department"`
	Description      string           `json:"description"`
	PaymentType      string           `json:"payment_type" gorm:"column:payment_type"`
	GSTNumber        string           `json:"gstno,omitempty" gorm:"column:gst_number"`
	Status           string           `json:"status" gorm:"default:pending;index"`
	IsFlagged        bool             `json:"is_flagged" gorm:"column:is_flagged"`
	RejectionReason  *string          `json:"rejection_reason,omitempty" gorm:"column:rejection_reason"`
	ValidationResult ValidationResult `json:"validation_result" gorm:"column:validation_result;type:jsonb"`
	AuditHistory     AuditHistory     `json:"audit_history" gorm:"column:audit_history;type:jsonb"`
	ExpenseDate      time.Time        `json:"expense_date" gorm:"column:expense_date;type:date"`
	SubmittedAt      time.Time        `json:"submitted_at" gorm:"column:submitted_at"`
	CreatedAt        time.Time        `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time        `json:"updated_at" gorm:"column:updated_at"`
}

func (Bill) TableName() string {
	return "bills"
}

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DocID derives the bill identifier from vendor name and bill number:
// the vendor is lowercased with whitespace runs collapsed to hyphens,
// then joined to the bill number. "Office Depot" + "456" -> "office-depot-456".
func DocID(vendor, billNumber string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(vendor)), "-")
	return slug + "-" + billNumber
}

func (b *Bill) CanBeApproved() bool {
	return b.Status == StatusPending
}

func (b *Bill) CanBeRejected() bool {
	return b.Status == StatusPending
}

func (b *Bill) Approve(approvedBy string) {
	now := time.Now()
	b.Status = StatusApproved
	b.RejectionReason = nil
	b.UpdatedAt = now
	b.AuditHistory = append(b.AuditHistory, AuditEntry{
		Date:   now,
		Action: "approved",
		User:   approvedBy,
	})
}

func (b *Bill) Reject(rejectedBy, reason string) {
	now := time.Now()
	b.Status = StatusRejected
	b.RejectionReason = &reason
	b.UpdatedAt = now
	b.AuditHistory = append(b.AuditHistory, AuditEntry{
		Date:   now,
		Action: "rejected",
		User:   rejectedBy,
		Notes:  reason,
	})
}

// ValidationResult is the outcome of upstream receipt validation
type ValidationResult struct {
	BillValid bool   `json:"bill_valid"`
	Reason    string `json:"reason,omitempty"`
}

func (v ValidationResult) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *ValidationResult) Scan(value interface{}) error {
	if value == nil {
		*v = ValidationResult{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into ValidationResult", value)
		}
	}
	return json.Unmarshal(bytes, v)
}

// AuditEntry records one administrative action taken on a bill
type AuditEntry struct {
	Date   time.Time `json:"date"`
	Action string    `json:"action"`
	User   string    `json:"user"`
	Notes  string    `json:"notes,omitempty"`
}

type AuditHistory []AuditEntry

func (h AuditHistory) Value() (driver.Value, error) {
	if h == nil {
		h = AuditHistory{}
	}
	return json.Marshal(h)
}

func (h *AuditHistory) Scan(value interface{}) error {
	if value == nil {
		*h = AuditHistory{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into AuditHistory", value)
		}
	}
	return json.Unmarshal(bytes, h)
}

// Domain errors
var (
	ErrBillNotFound  = errors.New("bill not found")
	ErrBillExists    = errors.New("bill already exists")
	ErrInvalidStatus = errors.New("invalid bill status for this operation")
)
