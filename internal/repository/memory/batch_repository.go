package memory

import (
	"context"
	"time"

	"textcards-be/internal/entity"
	"textcards-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type BatchRepository struct {
	cache *cache.Cache
}

// NewBatchRepository keeps batches in memory for 24 hours. Used when no
// database connection is configured.
func NewBatchRepository() contract.IBatchRepository {
	return &BatchRepository{
		cache: cache.New(24*time.Hour, time.Hour),
	}
}

func (r *BatchRepository) Save(_ context.Context, batch *entity.Batch) error {
	r.cache.Set(batch.Id, batch, cache.DefaultExpiration)
	return nil
}

func (r *BatchRepository) FindById(_ context.Context, id string) (*entity.Batch, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*entity.Batch), nil
	}
	return nil, nil
}
