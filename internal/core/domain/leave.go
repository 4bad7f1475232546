package domain

import (
	"errors"
	"time"
)

// LeaveStatus represents the lifecycle state of a leave request.
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// validTransitions defines the allowed state machine transitions. Approved
// and rejected are terminal: nothing transitions out of them.
var validTransitions = map[LeaveStatus][]LeaveStatus{
	LeavePending: {LeaveApproved, LeaveRejected},
}

var ErrInvalidTransition = errors.New("invalid leave status transition")
var ErrRequestNotFound = errors.New("leave request not found")
var ErrValidation = errors.New("validation failed")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s LeaveStatus) CanTransitionTo(next LeaveStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s LeaveStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

const (
	LeaveTypeAnnual = "annual"
	LeaveTypeSick   = "sick"
	LeaveTypeCasual = "casual"
	LeaveTypeUnpaid = "unpaid"
)

// ValidLeaveType reports whether t is a known leave type.
func ValidLeaveType(t string) bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCasual, LeaveTypeUnpaid:
		return true
	}
	return false
}

// LeaveRequest is a single employee leave application. It is created in
// pending and decided exactly once; approver fields are set by that decision
// and never mutated again.
type LeaveRequest struct {
	ID            string      `json:"id" bson:"_id,omitempty"`
	EmployeeID    string      `json:"employee_id" bson:"employee_id"`
	Type          string      `json:"type" bson:"type"`
	StartDate     time.Time   `json:"start_date" bson:"start_date"`
	EndDate       time.Time   `json:"end_date" bson:"end_date"`
	Days          float64     `json:"days" bson:"days"`
	Reason        string      `json:"reason" bson:"reason"`
	Status        LeaveStatus `json:"status" bson:"status"`
	ApproverID    string      `json:"approver_id,omitempty" bson:"approver_id,omitempty"`
	DecisionNotes string      `json:"decision_notes,omitempty" bson:"decision_notes,omitempty"`
	ApprovedAt    *time.Time  `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" bson:"updated_at"`
}

// LeaveBalance is the per-employee, per-type, per-year ledger row.
// Remaining == Total - Used must hold after every write.
type LeaveBalance struct {
	EmployeeID string    `json:"employee_id" bson:"employee_id"`
	Type       string    `json:"type" bson:"leave_type"`
	Year       int       `json:"year" bson:"year"`
	Total      float64   `json:"total" bson:"total"`
	Used       float64   `json:"used" bson:"used"`
	Remaining  float64   `json:"remaining" bson:"remaining"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
