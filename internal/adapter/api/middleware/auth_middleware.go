package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/response"
)

const (
	ContextUID  = "uid"
	ContextUser = "user"
)

// TokenAuthenticator resolves an identity token to the signed-in user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

type AuthMiddleware struct {
	authenticator TokenAuthenticator
}

func NewAuthMiddleware(authenticator TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
	}
}

// Authenticate requires a Bearer token. Browsers cannot set headers on a
// WebSocket handshake, so a token query parameter is accepted as well.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := extractToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		user, err := m.authenticator.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextUID, user.ID)
		c.Set(ContextUser, user)

		return next(c)
	}
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return parts[1], nil
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c echo.Context) (*entity.User, bool) {
	user, ok := c.Get(ContextUser).(*entity.User)
	return user, ok && user != nil
}
