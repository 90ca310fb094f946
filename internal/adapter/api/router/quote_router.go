package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
	"mindhaven/internal/domain/entity"
)

func SetupQuoteRouter(e *echo.Echo, quoteHandler *handler.QuoteHandler, authMiddleware *middleware.AuthMiddleware) {
	quotes := e.Group("/v1/quotes")
	quotes.Use(authMiddleware.Authenticate)

	quotes.GET("", quoteHandler.List)
	quotes.GET("/random", quoteHandler.Random)

	authors := middleware.RequireRole(entity.RoleTherapist, entity.RoleAdmin)
	quotes.POST("", quoteHandler.Create, authors)
	quotes.PUT("/:id", quoteHandler.Update, authors)
	quotes.DELETE("/:id", quoteHandler.Delete, authors)
}
