package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/labstack/echo/v4"

	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/response"
)

// Limiter admits or refuses one event for key and action.
type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// RateLimit throttles requests per client IP for action. Used on the
// unauthenticated auth routes, where there is no user to key on.
func RateLimit(limiter Limiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, wait := limiter.Allow(ip, action)
			if !allowed {
				logger.Warn("RATE LIMIT: blocked %s from %s (retry in %v)", action, ip, wait)
				seconds := int(math.Ceil(wait.Seconds()))
				c.Response().Header().Set("Retry-After", fmt.Sprint(seconds))
				return response.Error(c, errors.TooManyRequests(fmt.Sprintf("Too many requests, try again in %ds", seconds), nil))
			}
			return next(c)
		}
	}
}
