package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error
	ListByClient(ctx context.Context, clientID string) ([]*entity.Booking, error)
	ListByTherapist(ctx context.Context, therapistID string) ([]*entity.Booking, error)
	ListAll(ctx context.Context) ([]*entity.Booking, error)
}
