package repository

import (
	"context"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type MotionRepository interface {
	Create(ctx context.Context, m *models.Motion) error
	FindByID(ctx context.Context, id uint) (*models.Motion, error)
	FindAll(ctx context.Context) ([]models.Motion, error)
}

type motionRepository struct {
	db *storage.PostgresDB
}

func NewMotionRepository(db *storage.PostgresDB) MotionRepository {
	return &motionRepository{db: db}
}

func (r *motionRepository) Create(ctx context.Context, m *models.Motion) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *motionRepository) FindByID(ctx context.Context, id uint) (*models.Motion, error) {
	var m models.Motion
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// FindAll 查詢所有辯題
func (r *motionRepository) FindAll(ctx context.Context) ([]models.Motion, error) {
	var ms []models.Motion
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ms).Error
	return ms, translate(err)
}
