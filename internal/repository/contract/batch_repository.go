package contract

import (
	"context"

	"textcards-be/internal/entity"
)

// IBatchRepository persists generation batches. The memory implementation
// backs deployments without a database.
type IBatchRepository interface {
	Save(ctx context.Context, batch *entity.Batch) error
	FindById(ctx context.Context, id string) (*entity.Batch, error)
}
