package router

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/handler"
	"mindhaven/internal/adapter/api/middleware"
	"mindhaven/internal/domain/entity"
)

func SetupBookingRouter(e *echo.Echo, bookingHandler *handler.BookingHandler, authMiddleware *middleware.AuthMiddleware) {
	bookings := e.Group("/v1/bookings")
	bookings.Use(authMiddleware.Authenticate)

	bookings.POST("", bookingHandler.Create, middleware.RequireRole(entity.RoleClient))
	bookings.GET("", bookingHandler.List)
	bookings.GET("/:id", bookingHandler.Get)
	bookings.PATCH("/:id/status", bookingHandler.UpdateStatus)
}
