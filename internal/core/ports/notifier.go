package ports

import (
	"context"
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

// LeaveDecisionEvent is emitted whenever a request reaches a terminal status.
type LeaveDecisionEvent struct {
	RequestID  string
	EmployeeID string
	Type       string
	Days       float64
	Decision   domain.LeaveStatus
	ApproverID string
	DecidedAt  time.Time
}

// Notifier delivers a decision notification to the employee. Delivery
// semantics (mail, push, browser) are a downstream concern; failures are
// logged, not surfaced to the approver.
type Notifier interface {
	Notify(ctx context.Context, event LeaveDecisionEvent) error
}
