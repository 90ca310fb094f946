package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/usecase"
	"mindhaven/pkg/response"
)

type PositivityService interface {
	Compute(ctx context.Context, userID string) (*usecase.PositivityReport, error)
}

type WellbeingHandler struct {
	positivityUseCase PositivityService
}

func NewWellbeingHandler(positivityUseCase PositivityService) *WellbeingHandler {
	return &WellbeingHandler{
		positivityUseCase: positivityUseCase,
	}
}

// Positivity computes the caller's positivity ratio. Each request classifies
// afresh; nothing is cached.
func (h *WellbeingHandler) Positivity(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	report, err := h.positivityUseCase.Compute(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, report)
}
