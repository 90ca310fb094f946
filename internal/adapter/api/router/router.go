package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, h *handler.Handlers, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	SetupHealthRouter(e, h.Health)
	SetupAuthRouter(e, h.Auth, authMiddleware, limiter)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupBookingRouter(e, h.Booking, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware)
	SetupNotificationRouter(e, h.Notification, authMiddleware)
	SetupAiRouter(e, h.AiChat, h.Wellbeing, authMiddleware)
	SetupQuoteRouter(e, h.Quote, authMiddleware)
	SetupAdminRouter(e, h.Admin, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket, authMiddleware)
}
