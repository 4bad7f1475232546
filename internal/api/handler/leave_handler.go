package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

// LeaveHandler handles leave submission, the approval queue, and the
// balance ledger endpoints.
type LeaveHandler struct {
	service ports.LeaveService
}

func NewLeaveHandler(service ports.LeaveService) *LeaveHandler {
	return &LeaveHandler{service: service}
}

// Submit handles POST /v1/leaves.
//
// @Summary      Submit a leave request
// @Tags         leaves
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitLeaveRequest  true  "Leave application"
// @Success      201   {object}  domain.LeaveRequest
// @Failure      400   {object}  errorResponse
// @Router       /v1/leaves [post]
func (h *LeaveHandler) Submit(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req submitLeaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.Submit(c.Request().Context(), ports.SubmitLeaveInput{
		EmployeeID: identity.ID,
		Type:       req.Type,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       req.Days,
		Reason:     req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// ListMine handles GET /v1/leaves. The year query param defaults to the
// current year.
//
// @Summary      List own leave requests
// @Tags         leaves
// @Produce      json
// @Security     BearerAuth
// @Param        year  query     int  false  "Calendar year"
// @Success      200   {object}  listLeavesResponse
// @Router       /v1/leaves [get]
func (h *LeaveHandler) ListMine(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	requests, err := h.service.ListByEmployee(c.Request().Context(), identity.ID, year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listLeavesResponse{Requests: requests})
}

// ListPending handles GET /v1/leaves/pending for approvers.
//
// @Summary      List pending leave requests
// @Tags         leaves
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Rows per page"
// @Success      200    {object}  listLeavesResponse
// @Router       /v1/leaves/pending [get]
func (h *LeaveHandler) ListPending(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}

	requests, total, err := h.service.ListPending(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listLeavesResponse{
		Requests: requests,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// Decide handles POST /v1/leaves/:id/decision.
//
// @Summary      Approve or reject a leave request
// @Tags         leaves
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Request id"
// @Param        body  body      decideLeaveRequest  true  "Decision"
// @Success      200   {object}  domain.LeaveRequest
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/leaves/{id}/decision [post]
func (h *LeaveHandler) Decide(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req decideLeaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	decided, err := h.service.Decide(c.Request().Context(), ports.DecideLeaveInput{
		RequestID:  c.Param("id"),
		Decision:   domain.LeaveStatus(req.Decision),
		ApproverID: identity.ID,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, decided)
}

// SetBalance handles PUT /v1/balances.
//
// @Summary      Set a leave balance allotment
// @Tags         balances
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      setBalanceRequest  true  "Allotment"
// @Success      200   {object}  domain.LeaveBalance
// @Failure      400   {object}  errorResponse
// @Router       /v1/balances [put]
func (h *LeaveHandler) SetBalance(c echo.Context) error {
	var req setBalanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	balance, err := h.service.SetBalance(c.Request().Context(), ports.SetBalanceInput{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		Year:       req.Year,
		Total:      req.Total,
		Used:       req.Used,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balance)
}

// Balances handles GET /v1/balances/:employee_id.
//
// @Summary      List leave balances for an employee
// @Tags         balances
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id  path      string  true   "Employee id"
// @Param        year         query     int     false  "Calendar year"
// @Success      200          {object}  balancesResponse
// @Router       /v1/balances/{employee_id} [get]
func (h *LeaveHandler) Balances(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	employeeID := c.Param("employee_id")
	// employees may read only their own ledger
	if identity.Role == domain.RoleEmployee && identity.ID != employeeID {
		return domain.ErrForbidden
	}

	year, _ := strconv.Atoi(c.QueryParam("year"))
	if year == 0 {
		year = time.Now().Year()
	}

	balances, err := h.service.Balances(c.Request().Context(), employeeID, year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balancesResponse{Balances: balances})
}
