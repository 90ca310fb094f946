package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.POST("/me/avatar", userHandler.UploadAvatar)
	users.GET("/:id", userHandler.GetPublicProfile)

	e.GET("/v1/therapists", userHandler.ListTherapists, authMiddleware.Authenticate)
}
