package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware) {
	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.AdminOnly)

	admin.GET("/overview", adminHandler.Overview)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/bookings", adminHandler.ListBookings)
	admin.PATCH("/therapists/:id/status", adminHandler.SetTherapistStatus)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
}
