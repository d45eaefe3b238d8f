package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcity/complaints-api/internal/api/metrics"
	"github.com/smartcity/complaints-api/internal/core/ports"
)

// CaseHandler handles HTTP requests for complaint cases.
type CaseHandler struct {
	service ports.CaseService
}

func NewCaseHandler(service ports.CaseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// Create files a new complaint.
//
// @Summary      File a complaint
// @Tags         cases
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCaseRequest  true  "Complaint details"
// @Success      201   {object}  caseResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/v1/cases [post]
func (h *CaseHandler) Create(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req createCaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.service.CreateCase(c.Request().Context(), caller, ports.CreateCaseInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return err
	}
	metrics.CasesCreatedTotal.WithLabelValues(created.Category, string(created.Priority)).Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/cases/"+created.ID)
	return c.JSON(http.StatusCreated, toCaseResponse(created))
}

// List returns the page of cases visible to the caller.
//
// @Summary      List cases
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        status    query     string  false  "pending, in-progress or resolved"
// @Param        category  query     string  false  "Exact category"
// @Param        priority  query     string  false  "low, medium, high or urgent"
// @Param        search    query     string  false  "Partial match on title, description or location"
// @Param        page      query     int     false  "1-based page (default 1)"
// @Param        limit     query     int     false  "Page size (default 20, max 100)"
// @Success      200       {object}  listCasesResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Router       /api/v1/cases [get]
func (h *CaseHandler) List(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req listCasesRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.service.ListCases(c.Request().Context(), caller, ports.ListCasesInput{
		Status:   req.Status,
		Category: req.Category,
		Priority: req.Priority,
		Search:   req.Search,
		Page:     req.Page,
		Limit:    req.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListCasesResponse(res))
}

// Get returns one case in the caller's scope.
//
// @Summary      Get a case
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case id"
// @Success      200  {object}  caseResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/cases/{id} [get]
func (h *CaseHandler) Get(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	found, err := h.service.GetCase(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseResponse(found))
}

// History returns the audit trail of one case in the caller's scope.
//
// @Summary      Case history
// @Tags         cases
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Case id"
// @Success      200  {array}   caseEventResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/v1/cases/{id}/history [get]
func (h *CaseHandler) History(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	events, err := h.service.CaseHistory(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCaseEvents(events))
}

// UpdateStatus moves a case to a new status.
//
// @Summary      Update case status
// @Tags         cases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Case id"
// @Param        body  body      updateStatusRequest  true  "New status and optional version"
// @Success      200   {object}  caseResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/cases/{id}/status [patch]
func (h *CaseHandler) UpdateStatus(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.service.UpdateCaseStatus(c.Request().Context(), caller, ports.UpdateStatusInput{
		CaseID:  req.ID,
		Status:  req.Status,
		Version: req.Version,
	})
	if err != nil {
		return err
	}
	metrics.CaseStatusTransitionsTotal.WithLabelValues(string(updated.Status), string(caller.Role)).Inc()
	return c.JSON(http.StatusOK, toCaseResponse(updated))
}

// Assign hands a case to one of the admin's employees.
//
// @Summary      Assign a case
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Case id"
// @Param        body  body      assignCaseRequest  true  "Employee and optional version"
// @Success      200   {object}  caseResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/v1/admin/cases/{id}/assign [patch]
func (h *CaseHandler) Assign(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}
	var req assignCaseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.service.AssignCase(c.Request().Context(), caller, ports.AssignCaseInput{
		CaseID:     req.ID,
		EmployeeID: req.EmployeeID,
		Version:    req.Version,
	})
	if err != nil {
		return err
	}
	metrics.CaseAssignmentsTotal.Inc()
	return c.JSON(http.StatusOK, toCaseResponse(updated))
}
