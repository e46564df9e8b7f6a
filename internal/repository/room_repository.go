package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	ListPublic(ctx context.Context, limit int) ([]models.Room, error)
	ListByMotion(ctx context.Context, motionID uint) ([]models.Room, error)
	ListByTimer(ctx context.Context, timer models.TimerState) ([]models.Room, error)
	// Transition 條件成立時才寫入新階段，回傳是否有更新
	Transition(ctx context.Context, id uint, guard models.PhaseGuard, next models.Phase) (bool, error)
	SaveVerdict(ctx context.Context, id uint, winner *models.Side, text string, countRetry bool) error
}

type roomRepository struct {
	db *storage.PostgresDB
}

func NewRoomRepository(db *storage.PostgresDB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

func (r *roomRepository) FindByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

// ListPublic 查詢尚未結束的公開房間
func (r *roomRepository) ListPublic(ctx context.Context, limit int) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where(datatypes.JSONQuery("config").Equals(true, "is_public")).
		Where("status <> ?", models.RoomStatusFinished).
		Order("created_at DESC").
		Limit(limit).
		Find(&rooms).Error
	return rooms, translate(err)
}

func (r *roomRepository) ListByMotion(ctx context.Context, motionID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("motion_id = ?", motionID).
		Where(datatypes.JSONQuery("config").Equals(true, "is_public")).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, translate(err)
}

// ListByTimer 啟動時用來找出需要重新排程的房間
func (r *roomRepository) ListByTimer(ctx context.Context, timer models.TimerState) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Where("status = ? AND timer_state = ?", models.RoomStatusActive, timer).
		Find(&rooms).Error
	return rooms, translate(err)
}

func (r *roomRepository) Transition(ctx context.Context, id uint, guard models.PhaseGuard, next models.Phase) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ? AND status = ?", id, guard.Status)
	if guard.Speaker != nil {
		q = q.Where("current_speaker_side = ? AND current_speaker_seat = ?", guard.Speaker.Side, guard.Speaker.Seat)
	}
	if guard.CountdownFreeAt != nil {
		q = q.Where("((turn_deadline IS NULL AND timer_state IS DISTINCT FROM ?) OR turn_deadline <= ?)",
			models.TimerSpeaking, *guard.CountdownFreeAt)
	}

	res := q.Updates(models.PhaseColumns(next))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// SaveVerdict 寫入判決，winner 為 nil 代表判決失敗；countRetry 為 true 時同時累加手動重判次數
func (r *roomRepository) SaveVerdict(ctx context.Context, id uint, winner *models.Side, text string, countRetry bool) error {
	cols := map[string]interface{}{
		"winner_side":  winner,
		"verdict_text": text,
	}
	if countRetry {
		cols["judgment_retries"] = gorm.Expr("judgment_retries + 1")
	}
	res := r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
