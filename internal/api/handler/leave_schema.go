package handler

import (
	"time"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

type submitLeaveRequest struct {
	Type      string    `json:"type" validate:"required,oneof=annual sick casual unpaid"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required"`
	Days      float64   `json:"days" validate:"required,gt=0"`
	Reason    string    `json:"reason"`
}

type decideLeaveRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approved rejected"`
	Notes    string `json:"notes"`
}

type setBalanceRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=annual sick casual unpaid"`
	Year       int     `json:"year" validate:"required"`
	Total      float64 `json:"total" validate:"gte=0"`
	Used       float64 `json:"used" validate:"gte=0"`
}

type listLeavesResponse struct {
	Requests []*domain.LeaveRequest `json:"requests"`
	Total    int64                  `json:"total,omitempty"`
	Page     int                    `json:"page,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
}

type balancesResponse struct {
	Balances []*domain.LeaveBalance `json:"balances"`
}
