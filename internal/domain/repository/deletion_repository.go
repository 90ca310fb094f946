package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

// DeletionRepository commits a DeletionPlan atomically: every document in the
// plan is removed, or none is.
type DeletionRepository interface {
	Commit(ctx context.Context, plan *entity.DeletionPlan) error
}
