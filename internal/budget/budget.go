package budget

import (
	"errors"
	"time"
)

// BudgetItem is a fiscal-year allocation for a category within a department
type BudgetItem struct {
	ID         string    `json:"id" gorm:"primaryKey;column:budget_id"`
	Category   string    `json:"category" gorm:"not null"`
	Department string    `json:"department" gorm:"not null"`
	Allocated  float64   `json:"allocated" gorm:"not null"`
	Spent      float64   `json:"spent"`
	Remaining  float64   `json:"remaining"`
	FiscalYear int       `json:"fiscal_year" gorm:"column:fiscal_year;index"`
	Quarter    int       `json:"quarter"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (BudgetItem) TableName() string {
	return "budgets"
}

// SpendingControl caps spend for a department or category over a period
type SpendingControl struct {
	ID           string    `json:"id" gorm:"primaryKey;column:control_id"`
	Type         string    `json:"type" gorm:"not null"`
	Target       string    `json:"target" gorm:"not null"`
	Limit        float64   `json:"limit" gorm:"column:spend_limit;not null"`
	Period       string    `json:"period" gorm:"not null"`
	CurrentSpend float64   `json:"current_spend" gorm:"column:current_spend"`
	Active       bool      `json:"active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (SpendingControl) TableName() string {
	return "spending_controls"
}

const (
	ControlTypeDepartment = "department"
	ControlTypeCategory   = "category"

	PeriodMonthly   = "monthly"
	PeriodQuarterly = "quarterly"
	PeriodYearly    = "yearly"
)

// Matches reports whether a bill's department and category fall under
// this control
func (c *SpendingControl) Matches(department, category string) bool {
	if !c.Active {
		return false
	}
	switch c.Type {
	case ControlTypeDepartment:
		return c.Target == department
	case ControlTypeCategory:
		return c.Target == category
	default:
		return false
	}
}

var (
	ErrBudgetNotFound  = errors.New("budget item not found")
	ErrControlNotFound = errors.New("spending control not found")
)
