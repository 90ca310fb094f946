package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection(notificationsCollection).Doc(notification.ID).Set(ctx, notification); err != nil {
		return errors.Internal("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.client.Collection(notificationsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Internal("Failed to get notification", err)
	}

	var notification entity.Notification
	if err := doc.DataTo(&notification); err != nil {
		return nil, errors.Internal("Failed to parse notification data", err)
	}
	return &notification, nil
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	items, err := decodeAll[entity.Notification](r.client.Collection(notificationsCollection).Where("userId", "==", userID).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list notifications", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.client.Collection(notificationsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "read", Value: true},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Notification", err)
		}
		return errors.Internal("Failed to mark notification read", err)
	}
	return nil
}

// maxWritesPerTransaction is Firestore's cap on writes in one commit.
const maxWritesPerTransaction = 500

// MarkAllRead flips the unread set in transactions of at most
// maxWritesPerTransaction documents each. Every chunk is atomic; a failure
// leaves earlier chunks read and reports how many were flipped.
func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	query := r.client.Collection(notificationsCollection).
		Where("userId", "==", userID).
		Where("read", "==", false).
		Limit(maxWritesPerTransaction)

	updated, err := markInChunks(ctx, maxWritesPerTransaction, func(ctx context.Context) (int, error) {
		var marked int
		err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			docs, err := tx.Documents(query).GetAll()
			if err != nil {
				return err
			}

			marked = 0
			for _, doc := range docs {
				if err := tx.Update(doc.Ref, []firestore.Update{{Path: "read", Value: true}}); err != nil {
					return err
				}
				marked++
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		return marked, nil
	})
	if err != nil {
		return updated, errors.Internal("Failed to mark notifications read", err)
	}
	return updated, nil
}

// markInChunks calls markChunk until a chunk comes back smaller than
// chunkSize, and returns the running total.
func markInChunks(ctx context.Context, chunkSize int, markChunk func(context.Context) (int, error)) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := markChunk(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < chunkSize {
			return total, nil
		}
	}
}

func (r *firestoreNotificationRepository) WatchByUser(ctx context.Context, userID string, onChange func([]*entity.Notification), onError func(error)) repository.Unsubscribe {
	query := r.client.Collection(notificationsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return watchQuery[entity.Notification](ctx, query, "notifications", onChange, onError)
}
