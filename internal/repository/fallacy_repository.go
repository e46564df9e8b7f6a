package repository

import (
	"context"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type FallacyRepository interface {
	Create(ctx context.Context, tag *models.FallacyTag) error
	ListByArgument(ctx context.Context, argumentID uint) ([]models.FallacyTag, error)
}

type fallacyRepository struct {
	db *storage.PostgresDB
}

func NewFallacyRepository(db *storage.PostgresDB) FallacyRepository {
	return &fallacyRepository{db: db}
}

func (r *fallacyRepository) Create(ctx context.Context, tag *models.FallacyTag) error {
	return translate(r.db.WithContext(ctx).Create(tag).Error)
}

func (r *fallacyRepository) ListByArgument(ctx context.Context, argumentID uint) ([]models.FallacyTag, error) {
	var tags []models.FallacyTag
	err := r.db.WithContext(ctx).Where("argument_id = ?", argumentID).Order("created_at ASC, id ASC").Find(&tags).Error
	return tags, translate(err)
}
