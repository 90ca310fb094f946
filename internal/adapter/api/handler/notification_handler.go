package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	"mindhaven/internal/usecase"
	"mindhaven/pkg/response"
)

type NotificationService interface {
	List(ctx context.Context, userID string) (usecase.Feed, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type NotificationHandler struct {
	notificationUseCase NotificationService
}

func NewNotificationHandler(notificationUseCase NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	feed, err := h.notificationUseCase.List(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, feed)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.notificationUseCase.MarkRead(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Notification marked as read",
	})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	uid, err := currentUID(c)
	if err != nil {
		return response.Error(c, err)
	}

	updated, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{
		"updated": updated,
	})
}
