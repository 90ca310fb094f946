package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/response"
)

type QuoteService interface {
	List(ctx context.Context) ([]*entity.Quote, error)
	Random(ctx context.Context) (*entity.Quote, error)
	Create(ctx context.Context, userID, text string) (*entity.Quote, error)
	Update(ctx context.Context, userID, id, text string) (*entity.Quote, error)
	Delete(ctx context.Context, userID, id string) error
}

type QuoteHandler struct {
	quoteUseCase QuoteService
}

func NewQuoteHandler(quoteUseCase QuoteService) *QuoteHandler {
	return &QuoteHandler{
		quoteUseCase: quoteUseCase,
	}
}

type quoteRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (h *QuoteHandler) List(c echo.Context) error {
	quotes, err := h.quoteUseCase.List(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, quotes)
}

func (h *QuoteHandler) Random(c echo.Context) error {
	quote, err := h.quoteUseCase.Random(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, quote)
}

func (h *QuoteHandler) Create(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	quote, err := h.quoteUseCase.Create(c.Request().Context(), uid, req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, quote)
}

func (h *QuoteHandler) Update(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req quoteRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	quote, err := h.quoteUseCase.Update(c.Request().Context(), uid, c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, quote)
}

func (h *QuoteHandler) Delete(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.quoteUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Quote deleted",
	})
}
