package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeBillSubmitted   = "bill.submitted"
	EventTypeBillApproved    = "bill.approved"
	EventTypeBillRejected    = "bill.rejected"
	EventTypeGrievanceFiled  = "grievance.filed"
	EventTypeControlBreached = "control.breached"
)

type BillSubmittedEvent struct {
	BaseEvent
	DocID      string  `json:"doc_id"`
	EmployeeID string  `json:"employee_id"`
	Vendor     string  `json:"vendor"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Department string  `json:"department"`
}

func NewBillSubmittedEvent(docID, employeeID, vendor string, amount float64, category, department string) *BillSubmittedEvent {
	return &BillSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBillSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"doc_id":      docID,
				"employee_id": employeeID,
				"vendor":      vendor,
				"amount":      amount,
				"category":    category,
				"department":  department,
			},
		},
		DocID:      docID,
		EmployeeID: employeeID,
		Vendor:     vendor,
		Amount:     amount,
		Category:   category,
		Department: department,
	}
}

type BillApprovedEvent struct {
	BaseEvent
	DocID      string  `json:"doc_id"`
	EmployeeID string  `json:"employee_id"`
	ApprovedBy string  `json:"approved_by"`
	Amount     float64 `json:"amount"`
}

func NewBillApprovedEvent(docID, employeeID, approvedBy string, amount float64) *BillApprovedEvent {
	return &BillApprovedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBillApproved,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"doc_id":      docID,
				"employee_id": employeeID,
				"approved_by": approvedBy,
				"amount":      amount,
			},
		},
		DocID:      docID,
		EmployeeID: employeeID,
		ApprovedBy: approvedBy,
		Amount:     amount,
	}
}

type BillRejectedEvent struct {
	BaseEvent
	DocID      string `json:"doc_id"`
	EmployeeID string `json:"employee_id"`
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason"`
}

func NewBillRejectedEvent(docID, employeeID, rejectedBy, reason string) *BillRejectedEvent {
	return &BillRejectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBillRejected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"doc_id":      docID,
				"employee_id": employeeID,
				"rejected_by": rejectedBy,
				"reason":      reason,
			},
		},
		DocID:      docID,
		EmployeeID: employeeID,
		RejectedBy: rejectedBy,
		Reason:     reason,
	}
}

type GrievanceFiledEvent struct {
	BaseEvent
	GrievanceID string `json:"grievance_id"`
	EmployeeID  string `json:"employee_id"`
	Category    string `json:"category"`
}

func NewGrievanceFiledEvent(grievanceID, employeeID, category string) *GrievanceFiledEvent {
	return &GrievanceFiledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeGrievanceFiled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grievance_id": grievanceID,
				"employee_id":  employeeID,
				"category":     category,
			},
		},
		GrievanceID: grievanceID,
		EmployeeID:  employeeID,
		Category:    category,
	}
}

type ControlBreachedEvent struct {
	BaseEvent
	ControlID    string  `json:"control_id"`
	Target       string  `json:"target"`
	Limit        float64 `json:"limit"`
	CurrentSpend float64 `json:"current_spend"`
}

func NewControlBreachedEvent(controlID, target string, limit, currentSpend float64) *ControlBreachedEvent {
	return &ControlBreachedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeControlBreached,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"control_id":    controlID,
				"target":        target,
				"limit":         limit,
				"current_spend": currentSpend,
			},
		},
		ControlID:    controlID,
		Target:       target,
		Limit:        limit,
		CurrentSpend: currentSpend,
	}
}
