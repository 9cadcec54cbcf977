package implementation

import (
	"context"
	"errors"
	"fmt"

	"textcards-be/internal/entity"
	"textcards-be/internal/repository/contract"

	"gorm.io/gorm"
)

type batchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) contract.IBatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Save(ctx context.Context, batch *entity.Batch) error {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("save batch %s: %w", batch.Id, err)
	}
	return nil
}

func (r *batchRepository) FindById(ctx context.Context, id string) (*entity.Batch, error) {
	var batch entity.Batch
	err := r.db.WithContext(ctx).Preload("Images").First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find batch %s: %w", id, err)
	}
	return &batch, nil
}
