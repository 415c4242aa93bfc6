// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ale-zgn/projet-semestriel/models"
)

// RequireRole checks if the authenticated user has one of the allowed roles
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ExtractRole(c)

			if role == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Success: false,
					Message: "Authentication required",
				})
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Success: false,
				Message: "Admin access required",
			})
		}
	}
}

// RequireAdmin restricts a route to admin accounts.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}
