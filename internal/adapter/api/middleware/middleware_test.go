package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/errors"
)

type fakeAuthenticator map[string]*entity.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return nil, errors.Unauthorized("Invalid or expired token", nil)
}

type fixedLimiter struct {
	allow bool
	wait  time.Duration
}

func (l fixedLimiter) Allow(string, string) (bool, time.Duration) {
	return l.allow, l.wait
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, c.Get(ContextUID).(string))
}

func serve(h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func TestAuthenticate(t *testing.T) {
	m := NewAuthMiddleware(fakeAuthenticator{
		"good": {ID: "c1", Role: entity.RoleClient},
	})
	h := m.Authenticate(ok)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"bearer token", "Bearer good", "", http.StatusOK},
		{"query token", "", "?token=good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", "", http.StatusUnauthorized},
		{"unknown token", "Bearer forged", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(h, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "c1", rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(fakeAuthenticator{
		"client": {ID: "c1", Role: entity.RoleClient},
		"admin":  {ID: "a1", Role: entity.RoleAdmin},
	})
	h := m.Authenticate(AdminOnly(ok))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer client")
	rec := serve(h, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer admin")
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(RequireRole(entity.RoleClient)(ok), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	rec := serve(RateLimit(fixedLimiter{allow: true}, "auth")(h), httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(RateLimit(fixedLimiter{wait: 1500 * time.Millisecond}, "auth")(h), httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "try again in 2s")
}
