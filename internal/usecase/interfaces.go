package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
	DeleteUser(ctx context.Context, uid string) error
	TestConnection(ctx context.Context) error
	SignInWithEmailPassword(ctx context.Context, email, password string) (string, string, error)
	RefreshIDToken(ctx context.Context, refreshToken string) (string, string, error)
}

// RateLimiter is satisfied by ratelimit.RateLimiter.
type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// Notifier delivers an in-app notification to a user.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, link string) error
}

func checkRate(limiter RateLimiter, key, action string) error {
	if limiter == nil {
		return nil
	}

	allowed, retryAfter := limiter.Allow(key, action)
	if allowed {
		return nil
	}
	seconds := int(math.Ceil(retryAfter.Seconds()))
	return errors.TooManyRequests(fmt.Sprintf("Too many requests, try again in %ds", seconds), nil)
}

// notifyQuietly sends a notification and only logs a failure. Notifications
// never fail the operation that triggered them.
func notifyQuietly(ctx context.Context, n Notifier, userID, title, message, link string) {
	if n == nil || userID == "" {
		return
	}
	if err := n.Notify(ctx, userID, title, message, link); err != nil {
		logger.Warn("Failed to notify user %s: %v", userID, err)
	}
}
