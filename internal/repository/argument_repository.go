package repository

import (
	"context"

	"gorm.io/gorm"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type ArgumentRepository interface {
	Create(ctx context.Context, arg *models.Argument) error
	FindByID(ctx context.Context, id uint) (*models.Argument, error)
	// ListByRoom 依建立時間排序，就是完整的逐字稿
	ListByRoom(ctx context.Context, roomID uint) ([]models.Argument, error)
	ListByRoomWithTags(ctx context.Context, roomID uint) ([]models.Argument, error)
	LastByRoom(ctx context.Context, roomID uint) (*models.Argument, error)
}

type argumentRepository struct {
	db *storage.PostgresDB
}

func NewArgumentRepository(db *storage.PostgresDB) ArgumentRepository {
	return &argumentRepository{db: db}
}

func (r *argumentRepository) Create(ctx context.Context, arg *models.Argument) error {
	return translate(r.db.WithContext(ctx).Create(arg).Error)
}

func (r *argumentRepository) FindByID(ctx context.Context, id uint) (*models.Argument, error) {
	var arg models.Argument
	if err := r.db.WithContext(ctx).First(&arg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &arg, nil
}

func (r *argumentRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Argument, error) {
	var args []models.Argument
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at ASC, id ASC").Find(&args).Error
	return args, translate(err)
}

func (r *argumentRepository) ListByRoomWithTags(ctx context.Context, roomID uint) ([]models.Argument, error) {
	var args []models.Argument
	err := r.db.WithContext(ctx).
		Preload("FallacyTags", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&args).Error
	return args, translate(err)
}

func (r *argumentRepository) LastByRoom(ctx context.Context, roomID uint) (*models.Argument, error) {
	var arg models.Argument
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("created_at DESC, id DESC").First(&arg).Error
	if err != nil {
		return nil, translate(err)
	}
	return &arg, nil
}
