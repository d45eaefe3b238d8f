package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcity/complaints-api/internal/core/ports"
)

// AdminHandler serves user management for admins.
type AdminHandler struct {
	identity ports.IdentityService
}

func NewAdminHandler(identity ports.IdentityService) *AdminHandler {
	return &AdminHandler{identity: identity}
}

// CreateEmployee creates an employee owned by the calling admin.
//
// @Summary      Create employee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee details; empty location fields default to the admin's"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/admin/employees [post]
func (h *AdminHandler) CreateEmployee(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req createEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	employee, err := h.identity.CreateEmployee(c.Request().Context(), caller, ports.CreateEmployeeInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		State:       req.State,
		District:    req.District,
		City:        req.City,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(employee))
}

// ListEmployees returns the calling admin's employees.
//
// @Summary      List own employees
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/admin/employees [get]
func (h *AdminHandler) ListEmployees(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	users, err := h.identity.ListEmployees(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserList(users))
}

// ListUsers returns the admin's employees and the citizens of the admin's city.
//
// @Summary      List managed users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	users, err := h.identity.ListManagedUsers(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserList(users))
}

// Deactivate disables a managed user and revokes their tokens.
//
// @Summary      Deactivate user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/admin/users/{id}/deactivate [patch]
func (h *AdminHandler) Deactivate(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.identity.DeactivateUser(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes a managed user. Their cases are kept.
//
// @Summary      Delete user
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/admin/users/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	if err := h.identity.DeleteUser(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
