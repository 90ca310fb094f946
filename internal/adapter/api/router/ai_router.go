package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
	"mindhaven/internal/domain/entity"
)

func SetupAiRouter(e *echo.Echo, aiChatHandler *handler.AiChatHandler, wellbeingHandler *handler.WellbeingHandler, authMiddleware *middleware.AuthMiddleware) {
	ai := e.Group("/v1/ai")
	ai.Use(authMiddleware.Authenticate)
	ai.Use(middleware.RequireRole(entity.RoleClient))

	ai.POST("/chat", aiChatHandler.Ask)
	ai.GET("/chat", aiChatHandler.History)

	wellbeing := e.Group("/v1/wellbeing")
	wellbeing.Use(authMiddleware.Authenticate)

	wellbeing.GET("/positivity", wellbeingHandler.Positivity)
}
