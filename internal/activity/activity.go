package activity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	AlertTypeInfo    = "info"
	AlertTypeWarning = "warning"
	AlertTypeError   = "error"
)

// Entry is a single row in the audit trail of things that happened
// in the system: bills submitted, approvals, grievances, breaches.
type Entry struct {
	ID        string    `gorm:"column:activity_id;primaryKey" json:"id"`
	Type      string    `gorm:"column:type;not null" json:"type"`
	Actor     string    `gorm:"column:actor" json:"actor"`
	Details   Details   `gorm:"column:details;type:jsonb" json:"details"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (Entry) TableName() string {
	return "activity_log"
}

// Alert surfaces conditions that need operator attention, such as
// a spending control being breached.
type Alert struct {
	ID        string    `gorm:"column:alert_id;primaryKey" json:"id"`
	Type      string    `gorm:"column:type;not null" json:"type"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

func (Alert) TableName() string {
	return "alerts"
}

type Details map[string]interface{}

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *Details) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Details: expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, d)
}

var ErrEntryNotFound = errors.New("activity entry not found")
