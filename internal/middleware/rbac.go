package middleware

import (
	"net/http"

	"vetly/internal/common"
	"vetly/internal/services"

	"github.com/labstack/echo/v4"
)

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{rbacService: rbacService}
}

// RequireRole guards a route group behind one of the tenant's roles.
func (m *RBACMiddleware) RequireRole(roleKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID, ok := common.GetUserIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
			}

			hasRole, err := m.rbacService.UserHasRole(ctx, userID, tenantID, roleKey)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Error checking role")
			}
			if !hasRole {
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}

			return next(c)
		}
	}
}
