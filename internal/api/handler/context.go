package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/smartcity/complaints-api/internal/api/middleware"
	"github.com/smartcity/complaints-api/internal/core/domain"
)

// callerFrom extracts the user injected by the Auth middleware. Its absence
// means the route was mounted without the gate and is treated as
// unauthenticated.
func callerFrom(c echo.Context) (*domain.User, error) {
	caller, _ := c.Get(middleware.CallerKey).(*domain.User)
	if caller == nil || caller.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return caller, nil
}
