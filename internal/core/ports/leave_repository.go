package ports

import (
	"context"
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// LeaveRequestRepository defines persistence for leave requests.
type LeaveRequestRepository interface {
	Create(ctx context.Context, r *domain.LeaveRequest) (*domain.LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error)
	// Decide flips the request from pending to the given terminal status,
	// conditionally on the stored status still being pending, and stamps the
	// approver fields. Returns domain.ErrRequestNotFound when the id does not
	// exist and domain.ErrInvalidTransition when the request was already
	// decided.
	Decide(ctx context.Context, id string, status domain.LeaveStatus, approverID, notes string, at time.Time) (*domain.LeaveRequest, error)
	// RevertDecision puts a just-decided request back to pending, clearing the
	// approver fields. Used as compensation when the ledger write fails.
	RevertDecision(ctx context.Context, id string) error
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error)
	// ListByStatus returns a page of requests in the given status plus the total count.
	ListByStatus(ctx context.Context, status domain.LeaveStatus, page, limit int) ([]*domain.LeaveRequest, int64, error)
}

// LeaveBalanceRepository defines persistence for the balance ledger. Both
// write operations must be single atomic read-modify-writes on the
// (employee, type, year) row: concurrent approvals against the same key must
// serialize without losing an increment.
type LeaveBalanceRepository interface {
	// Upsert replaces total/used and recomputes remaining. The creation
	// timestamp of an existing row is preserved.
	Upsert(ctx context.Context, employeeID, leaveType string, year int, total, used float64) (*domain.LeaveBalance, error)
	// ApplyApprovalDelta atomically increments used by delta and recomputes
	// remaining, creating a zeroed row when the key is absent.
	ApplyApprovalDelta(ctx context.Context, employeeID, leaveType string, year int, delta float64) (*domain.LeaveBalance, error)
	Get(ctx context.Context, employeeID, leaveType string, year int) (*domain.LeaveBalance, error)
	ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveBalance, error)
}
