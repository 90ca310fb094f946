package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	// MarkAllRead flips every unread notification of the user in one write
	// and returns how many changed.
	MarkAllRead(ctx context.Context, userID string) (int, error)

	// WatchByUser delivers the user's notifications, newest first, on every
	// change until the returned Unsubscribe is called or ctx ends.
	WatchByUser(ctx context.Context, userID string, onChange func([]*entity.Notification), onError func(error)) Unsubscribe
}
