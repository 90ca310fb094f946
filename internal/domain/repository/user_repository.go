package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetOnline(ctx context.Context, id string, online bool) error
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	ListTherapistsByStatus(ctx context.Context, status entity.TherapistStatus) ([]*entity.User, error)
	ListAll(ctx context.Context) ([]*entity.User, error)
}
