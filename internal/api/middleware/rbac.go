package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rjtc/pms-sync/internal/core/domain"
)

// RequireRole gates an affordance behind a set of roles. A session whose
// role has not been chosen yet (RoleNone) is never in the allowed set, so
// it falls through to the same denial as RoleMember — pending users see the
// member experience, nothing crashes.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, _ := c.Get("role").(string)
			if _, ok := allowed[domain.ParseRole(raw)]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
