package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/staffhub/hr-portal/internal/core/domain"
	"github.com/staffhub/hr-portal/internal/core/ports"
)

// EmployeeHandler handles the credential CRUD screens for admin and HR.
type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

type updateEmployeeRequest struct {
	Email      *string    `json:"email"`
	Role       *string    `json:"role"`
	Name       *string    `json:"name"`
	Department *string    `json:"department"`
	Position   *string    `json:"position"`
	Phone      *string    `json:"phone"`
	Address    *string    `json:"address"`
	HireDate   *time.Time `json:"hire_date"`
	BirthDate  *time.Time `json:"birth_date"`
}

type listEmployeesResponse struct {
	Employees []*domain.Credential `json:"employees"`
	Total     int64                `json:"total"`
	Page      int                  `json:"page"`
	Limit     int                  `json:"limit"`
}

// Get handles GET /v1/employees/:id.
//
// @Summary      Get an employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Employee id"
// @Success      200  {object}  domain.Credential
// @Failure      404  {object}  errorResponse
// @Router       /v1/employees/{id} [get]
func (h *EmployeeHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	// employees may read only their own record; admin and HR read anyone's
	if identity.Role == domain.RoleEmployee && identity.ID != id {
		return domain.ErrForbidden
	}

	cred, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cred)
}

// Update handles PATCH /v1/employees/:id — a partial merge of the provided fields.
//
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Employee id"
// @Param        body  body      updateEmployeeRequest  true  "Fields to update"
// @Success      200   {object}  domain.Credential
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/employees/{id} [patch]
func (h *EmployeeHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	id := c.Param("id")
	if identity.Role == domain.RoleEmployee {
		// self-service edits cover profile fields only
		if identity.ID != id || req.Role != nil || req.Email != nil {
			return domain.ErrForbidden
		}
	}

	updated, err := h.service.Update(c.Request().Context(), id, ports.UpdateCredentialInput{
		Email:      req.Email,
		Role:       req.Role,
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Phone:      req.Phone,
		Address:    req.Address,
		HireDate:   req.HireDate,
		BirthDate:  req.BirthDate,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/employees/:id.
//
// @Summary      Delete an employee
// @Tags         employees
// @Security     BearerAuth
// @Param        id  path  string  true  "Employee id"
// @Success      204  "employee deleted"
// @Failure      404  {object}  errorResponse
// @Router       /v1/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/employees.
//
// @Summary      List employees
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Rows per page"
// @Success      200    {object}  listEmployeesResponse
// @Router       /v1/employees [get]
func (h *EmployeeHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	creds, total, err := h.service.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEmployeesResponse{
		Employees: creds,
		Total:     total,
		Page:      page,
		Limit:     limit,
	})
}
