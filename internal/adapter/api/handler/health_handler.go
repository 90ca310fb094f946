package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"mindhaven/pkg/errors"
	"mindhaven/pkg/response"
)

type ConnectionTester interface {
	TestConnection(ctx context.Context) error
}

type HealthHandler struct {
	firebaseAuth ConnectionTester
}

func NewHealthHandler(firebaseAuth ConnectionTester) *HealthHandler {
	return &HealthHandler{
		firebaseAuth: firebaseAuth,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	if err := h.firebaseAuth.TestConnection(c.Request().Context()); err != nil {
		return response.Error(c, errors.ServiceUnavailable("Firebase Auth connection failed", err))
	}

	return response.Success(c, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
