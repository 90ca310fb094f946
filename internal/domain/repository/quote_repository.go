package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *entity.Quote) error
	GetByID(ctx context.Context, id string) (*entity.Quote, error)
	Update(ctx context.Context, quote *entity.Quote) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Quote, error)
	Count(ctx context.Context) (int64, error)
}
