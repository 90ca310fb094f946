package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/response"
)

type AiChatService interface {
	Ask(ctx context.Context, userID, question, photoDataURI string) (*entity.AiChatRecord, error)
	History(ctx context.Context, userID string) ([]*entity.AiChatRecord, error)
}

type AiChatHandler struct {
	aiChatUseCase AiChatService
}

func NewAiChatHandler(aiChatUseCase AiChatService) *AiChatHandler {
	return &AiChatHandler{
		aiChatUseCase: aiChatUseCase,
	}
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
	Photo    string `json:"photo" validate:"omitempty,datauri"`
}

func (h *AiChatHandler) Ask(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req askRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	record, err := h.aiChatUseCase.Ask(c.Request().Context(), uid, req.Question, req.Photo)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, record)
}

func (h *AiChatHandler) History(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	records, err := h.aiChatUseCase.History(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, records)
}
