package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/response"
)

type ChatService interface {
	ListConversations(ctx context.Context, userID string) ([]*usecase.ConversationSummary, error)
	GetMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error)
	SendMessage(ctx context.Context, chatID, senderID, text string) (*entity.Message, error)
	SoftDeleteMessage(ctx context.Context, chatID, messageID, requesterID string) error
}

// ChatHandler is the request/response face of chat. Live updates go through
// the WebSocket hub.
type ChatHandler struct {
	chatUseCase ChatService
}

func NewChatHandler(chatUseCase ChatService) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	conversations, err := h.chatUseCase.ListConversations(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversations)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	messages, err := h.chatUseCase.GetMessages(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), c.Param("id"), uid, req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.chatUseCase.SoftDeleteMessage(c.Request().Context(), c.Param("id"), c.Param("messageId"), uid); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Message deleted",
	})
}
