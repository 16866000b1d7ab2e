package middleware

import (
	"net/http"

	"elevate2/internal/common"
	"elevate2/internal/models"

	"github.com/labstack/echo/v4"
)

// RequireRole gates a route to the listed roles. The role comes off the
// verified JWT, so no database round trip is needed.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetUserRoleFromContext(c.Request().Context())
			if !ok || role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !allowed[role] {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireStaff shortcuts the common staff-or-admin gate.
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole(models.RoleStaff, models.RoleAdmin)
}
