package middleware

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/response"
)

// RequireRole admits only users holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return response.Error(c, errors.Unauthorized("Authentication required", nil))
			}

			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return response.Error(c, errors.Forbidden("You do not have access to this resource", nil))
		}
	}
}

func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireRole(entity.RoleAdmin)(next)
}
