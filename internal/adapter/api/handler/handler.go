package handler

import (
	"github.com/labstack/echo/v4"

	"mindhaven/internal/adapter/api/middleware"
	"mindhaven/pkg/errors"
)

// Handlers bundles every HTTP handler so main can build them once and hand
// them to the router.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Booking      *BookingHandler
	Chat         *ChatHandler
	Notification *NotificationHandler
	AiChat       *AiChatHandler
	Wellbeing    *WellbeingHandler
	Quote        *QuoteHandler
	Admin        *AdminHandler
	Health       *HealthHandler
	WebSocket    *WebSocketHandler
}

// currentUID returns the user id set by the auth middleware.
func currentUID(c echo.Context) (string, error) {
	uid, ok := c.Get(middleware.ContextUID).(string)
	if !ok || uid == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}
	return uid, nil
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}
