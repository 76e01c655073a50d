package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/plannr/event-planner/internal/api/middleware"
	"github.com/plannr/event-planner/internal/core/domain"
)

// currentUser returns the user resolved by the Auth middleware. A missing
// user means the route was mounted without the middleware.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.UserKey).(*domain.User)
	if user == nil || user.ID == "" {
		return nil, domain.ErrAuthRequired
	}
	return user, nil
}
