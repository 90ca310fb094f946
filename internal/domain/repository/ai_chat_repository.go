package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type AiChatRepository interface {
	Create(ctx context.Context, record *entity.AiChatRecord) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.AiChatRecord, error)
	Count(ctx context.Context) (int64, error)
}
