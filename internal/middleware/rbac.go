package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"zonekids/internal/common"
)

// RequireRole guards a route group so only users with the given role pass
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			if _, ok := common.GetUserIDFromContext(ctx); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			userRole, ok := common.GetUserRoleFromContext(ctx)
			if !ok || userRole != role {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}
