package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
	"mindhaven/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware, limiter middleware.Limiter) {
	public := e.Group("/v1/auth")
	public.Use(middleware.RateLimit(limiter, ratelimit.ActionAuth))

	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.POST("/refresh", authHandler.RefreshToken)

	protected := e.Group("/v1/auth")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("/logout", authHandler.Logout)
}
