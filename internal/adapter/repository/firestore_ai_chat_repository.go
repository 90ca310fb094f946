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

type firestoreAiChatRepository struct {
	client *firestore.Client
}

func NewFirestoreAiChatRepository(client *firestore.Client) repository.AiChatRepository {
	return &firestoreAiChatRepository{
		client: client,
	}
}

func (r *firestoreAiChatRepository) Create(ctx context.Context, record *entity.AiChatRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if _, err := r.client.Collection(aiChatsCollection).Doc(record.ID).Set(ctx, record); err != nil {
		return errors.Internal("Failed to save AI chat", err)
	}
	return nil
}

// ListByOwner returns the owner's exchanges, newest first.
func (r *firestoreAiChatRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.AiChatRecord, error) {
	records, err := decodeAll[entity.AiChatRecord](r.client.Collection(aiChatsCollection).Where("ownerId", "==", ownerID).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list AI chats", err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}

func (r *firestoreAiChatRepository) Count(ctx context.Context) (int64, error) {
	n, err := countQuery(ctx, r.client.Collection(aiChatsCollection).Query)
	if err != nil {
		return 0, errors.Internal("Failed to count AI chats", err)
	}
	return n, nil
}
