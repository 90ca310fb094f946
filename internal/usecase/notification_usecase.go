package usecase

import (
	"context"
	"strings"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

// LivePusher delivers a new notification to the user's open connections and
// reports how many accepted it.
type LivePusher interface {
	PushNotification(userID string, notification *entity.Notification) int
}

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	pusher           LivePusher
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
	}
}

// UseLivePusher sets where new notifications are pushed. Call it before the
// use case serves requests.
func (uc *NotificationUseCase) UseLivePusher(pusher LivePusher) {
	uc.pusher = pusher
}

// Feed is one snapshot of a user's notifications, newest first.
type Feed struct {
	Items       []*entity.Notification `json:"items"`
	UnreadCount int                    `json:"unread_count"`
}

func newFeed(items []*entity.Notification) Feed {
	if items == nil {
		items = []*entity.Notification{}
	}
	return Feed{
		Items:       items,
		UnreadCount: entity.CountUnread(items),
	}
}

// WatchFeed pushes a fresh Feed on every change to the user's notifications.
func (uc *NotificationUseCase) WatchFeed(ctx context.Context, userID string, onChange func(Feed), onError func(error)) repository.Unsubscribe {
	return uc.notificationRepo.WatchByUser(ctx, userID, func(items []*entity.Notification) {
		onChange(newFeed(items))
	}, onError)
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string) (Feed, error) {
	items, err := uc.notificationRepo.ListByUser(ctx, userID)
	if err != nil {
		return Feed{}, err
	}
	return newFeed(items), nil
}

// MarkRead marks one of the user's notifications read. Marking an already
// read notification is a no-op.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, id string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return errors.NotFound("Notification", nil)
	}
	if notification.Read {
		return nil
	}
	return uc.notificationRepo.MarkRead(ctx, id)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

func (uc *NotificationUseCase) Notify(ctx context.Context, userID, title, message, link string) error {
	if strings.TrimSpace(title) == "" {
		return errors.BadRequest("Notification title is required", nil)
	}

	notification := &entity.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	if uc.pusher != nil {
		uc.pusher.PushNotification(userID, notification)
	}
	return nil
}
