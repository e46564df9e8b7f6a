package repository

import (
	"context"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	Find(ctx context.Context, roomID, userID uint) (*models.Participant, error)
	FindBySeat(ctx context.Context, roomID uint, side models.Side, seat int) (*models.Participant, error)
	ListByRoom(ctx context.Context, roomID uint) ([]models.Participant, error)
	// UpdateSeat 席位已被佔用時回傳 ErrDuplicate
	UpdateSeat(ctx context.Context, id uint, role models.ParticipantRole, side models.Side, seat int) error
	Delete(ctx context.Context, id uint) error
}

type participantRepository struct {
	db *storage.PostgresDB
}

func NewParticipantRepository(db *storage.PostgresDB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *participantRepository) Find(ctx context.Context, roomID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).Where("room_id = ? AND user_id = ?", roomID, userID).First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *participantRepository) FindBySeat(ctx context.Context, roomID uint, side models.Side, seat int) (*models.Participant, error) {
	var p models.Participant
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND side = ? AND seat_number = ?", roomID, side, seat).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *participantRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Participant, error) {
	var ps []models.Participant
	err := r.db.WithContext(ctx).Where("room_id = ?", roomID).Order("joined_at ASC, id ASC").Find(&ps).Error
	return ps, translate(err)
}

func (r *participantRepository) UpdateSeat(ctx context.Context, id uint, role models.ParticipantRole, side models.Side, seat int) error {
	res := r.db.WithContext(ctx).Model(&models.Participant{}).Where("id = ?", id).Updates(map[string]interface{}{
		"role":        role,
		"side":        side,
		"seat_number": seat,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id uint) error {
	return translate(r.db.WithContext(ctx).Delete(&models.Participant{}, id).Error)
}
