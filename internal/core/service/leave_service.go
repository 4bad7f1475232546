package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/staffhub/hr-portal/internal/api/metrics"
	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

// DecisionDispatcher abstracts the fire-and-forget notification queue.
type DecisionDispatcher interface {
	Enqueue(event ports.LeaveDecisionEvent)
}

// LeaveService implements the leave request state machine and the balance
// ledger it feeds.
type LeaveService struct {
	requests   ports.LeaveRequestRepository
	balances   ports.LeaveBalanceRepository
	dispatcher DecisionDispatcher
	log        zerolog.Logger
	now        func() time.Time
}

func NewLeaveService(
	requests ports.LeaveRequestRepository,
	balances ports.LeaveBalanceRepository,
	dispatcher DecisionDispatcher,
	log zerolog.Logger,
) *LeaveService {
	return &LeaveService{
		requests:   requests,
		balances:   balances,
		dispatcher: dispatcher,
		log:        log,
		now:        time.Now,
	}
}

// Submit validates and creates a leave request in pending.
func (s *LeaveService) Submit(ctx context.Context, in ports.SubmitLeaveInput) (*domain.LeaveRequest, error) {
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	}
	if !domain.ValidLeaveType(in.Type) {
		return nil, fmt.Errorf("%w: unknown leave type %q", domain.ErrValidation, in.Type)
	}
	if in.Days <= 0 {
		return nil, fmt.Errorf("%w: day count must be positive", domain.ErrValidation)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: end date before start date", domain.ErrValidation)
	}

	now := s.now().UTC()
	request := &domain.LeaveRequest{
		EmployeeID: in.EmployeeID,
		Type:       in.Type,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Days:       in.Days,
		Reason:     in.Reason,
		Status:     domain.LeavePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.requests.Create(ctx, request)
	if err != nil {
		s.log.Error().Err(err).Str("employee_id", in.EmployeeID).Msg("failed to create leave request")
		return nil, err
	}

	s.log.Info().
		Str("request_id", created.ID).
		Str("employee_id", created.EmployeeID).
		Str("type", created.Type).
		Float64("days", created.Days).
		Msg("leave request submitted")

	return created, nil
}

// Decide performs the one-way pending -> approved|rejected transition. The
// conditional status flip guarantees exactly one decision per request; an
// approval then applies the ledger delta, and a failed ledger write reverts
// the flip so the two succeed or fail together.
func (s *LeaveService) Decide(ctx context.Context, in ports.DecideLeaveInput) (*domain.LeaveRequest, error) {
	if in.Decision != domain.LeaveApproved && in.Decision != domain.LeaveRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", domain.ErrValidation)
	}
	if !domain.LeavePending.CanTransitionTo(in.Decision) {
		return nil, domain.ErrInvalidTransition
	}

	decidedAt := s.now().UTC()
	decided, err := s.requests.Decide(ctx, in.RequestID, in.Decision, in.ApproverID, in.Notes, decidedAt)
	if err != nil {
		return nil, err
	}

	if in.Decision == domain.LeaveApproved {
		year := decided.StartDate.Year()
		if _, err := s.balances.ApplyApprovalDelta(ctx, decided.EmployeeID, decided.Type, year, decided.Days); err != nil {
			s.log.Error().Err(err).
				Str("request_id", decided.ID).
				Str("employee_id", decided.EmployeeID).
				Msg("ledger update failed, reverting decision")
			if revertErr := s.requests.RevertDecision(ctx, decided.ID); revertErr != nil {
				s.log.Error().Err(revertErr).Str("request_id", decided.ID).Msg("decision revert failed")
			}
			return nil, fmt.Errorf("apply approval delta: %w", err)
		}
		metrics.LeaveDaysApprovedTotal.WithLabelValues(decided.Type).Add(decided.Days)
	}

	metrics.LeaveDecisionsTotal.WithLabelValues(string(in.Decision)).Inc()
	s.log.Info().
		Str("request_id", decided.ID).
		Str("employee_id", decided.EmployeeID).
		Str("decision", string(in.Decision)).
		Str("approver_id", in.ApproverID).
		Msg("leave request decided")

	s.dispatcher.Enqueue(ports.LeaveDecisionEvent{
		RequestID:  decided.ID,
		EmployeeID: decided.EmployeeID,
		Type:       decided.Type,
		Days:       decided.Days,
		Decision:   in.Decision,
		ApproverID: in.ApproverID,
		DecidedAt:  decidedAt,
	})

	return decided, nil
}

func (s *LeaveService) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	return s.requests.ListByEmployee(ctx, employeeID, year)
}

func (s *LeaveService) ListPending(ctx context.Context, page, limit int) ([]*domain.LeaveRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.requests.ListByStatus(ctx, domain.LeavePending, page, limit)
}

// SetBalance creates or replaces a ledger row's allotment. Remaining is
// recomputed by the repository inside the same write.
func (s *LeaveService) SetBalance(ctx context.Context, in ports.SetBalanceInput) (*domain.LeaveBalance, error) {
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	}
	if !domain.ValidLeaveType(in.Type) {
		return nil, fmt.Errorf("%w: unknown leave type %q", domain.ErrValidation, in.Type)
	}
	if in.Year <= 0 {
		return nil, fmt.Errorf("%w: year is required", domain.ErrValidation)
	}
	if in.Total < 0 || in.Used < 0 {
		return nil, fmt.Errorf("%w: totals cannot be negative", domain.ErrValidation)
	}
	return s.balances.Upsert(ctx, in.EmployeeID, in.Type, in.Year, in.Total, in.Used)
}

func (s *LeaveService) Balances(ctx context.Context, employeeID string, year int) ([]*domain.LeaveBalance, error) {
	return s.balances.ListByEmployee(ctx, employeeID, year)
}
