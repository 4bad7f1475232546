package ports

import (
	"context"
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// SubmitLeaveInput carries a new leave application.
type SubmitLeaveInput struct {
	EmployeeID string
	Type       string
	StartDate  time.Time
	EndDate    time.Time
	Days       float64
	Reason     string
}

// DecideLeaveInput carries an approval or rejection of a pending request.
type DecideLeaveInput struct {
	RequestID  string
	Decision   domain.LeaveStatus
	ApproverID string
	Notes      string
}

// SetBalanceInput carries an admin/HR allotment write for a ledger row.
type SetBalanceInput struct {
	EmployeeID string
	Type       string
	Year       int
	Total      float64
	Used       float64
}

// LeaveService is the leave workflow: submission, the one-way decision state
// machine, and the balance ledger it feeds.
type LeaveService interface {
	Submit(ctx context.Context, in SubmitLeaveInput) (*domain.LeaveRequest, error)
	// Decide performs the pending -> approved|rejected transition. An approval
	// applies the ledger delta as part of the same logical operation: if the
	// ledger write fails the transition is not considered complete.
	Decide(ctx context.Context, in DecideLeaveInput) (*domain.LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error)
	ListPending(ctx context.Context, page, limit int) ([]*domain.LeaveRequest, int64, error)
	SetBalance(ctx context.Context, in SetBalanceInput) (*domain.LeaveBalance, error)
	Balances(ctx context.Context, employeeID string, year int) ([]*domain.LeaveBalance, error)
}
