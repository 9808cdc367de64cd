package grievance

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Grievance is an employee complaint about a bill decision
type Grievance struct {
	ID          string      `json:"id" gorm:"primaryKey;column:grievance_id"`
	EmployeeID  string      `json:"employee_id" gorm:"column:employee_id;not null;index"`
	BillID      string      `json:"bill_id" gorm:"column:bill_id"`
	Category    string      `json:"category"`
	Description string      `json:"description" gorm:"not null"`
	Status      string      `json:"status" gorm:"default:pending"`
	Attachments Attachments `json:"attachments" gorm:"type:jsonb"`
	Resolution  *string     `json:"resolution,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at" gorm:"column:submitted_at"`
	ResolvedAt  *time.Time  `json:"resolved_at,omitempty" gorm:"column:resolved_at"`
	CreatedAt   time.Time   `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time   `json:"updated_at" gorm:"column:updated_at"`
}

func (Grievance) TableName() string {
	return "grievances"
}

const (
	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusRejected = "rejected"
)

// NextID derives a grievance id from the current number of grievances.
// Count-then-insert is not atomic; two concurrent filings can collide
// and the second insert fails on the primary key.
func NextID(count int64) string {
	return fmt.Sprintf("grv_%d", count+1)
}

func (g *Grievance) CanBeResolved() bool {
	return g.Status == StatusPending
}

// Attachments stores uploaded file names as a JSON array
type Attachments []string

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		a = Attachments{}
	}
	return json.Marshal(a)
}

func (a *Attachments) Scan(value interface{}) error {
	if value == nil {
		*a = Attachments{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return fmt.Errorf("cannot scan %T into Attachments", value)
		}
	}
	return json.Unmarshal(bytes, a)
}

var ErrGrievanceNotFound = errors.New("grievance not found")
