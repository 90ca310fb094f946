package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.GET("", chatHandler.ListConversations)
	chats.GET("/:id/messages", chatHandler.GetMessages)
	chats.POST("/:id/messages", chatHandler.SendMessage)
	chats.DELETE("/:id/messages/:messageId", chatHandler.DeleteMessage)
}
