package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"debate_arena/internal/models"
	"debate_arena/internal/storage"
)

type VoteRepository interface {
	// Upsert 同一回合重投時覆蓋原本的選擇
	Upsert(ctx context.Context, vote *models.RoundVote) error
	Tally(ctx context.Context, roomID uint, round int) (models.VoteTally, error)
	TalliesByRoom(ctx context.Context, roomID uint) ([]models.VoteTally, error)
}

type voteRepository struct {
	db *storage.PostgresDB
}

func NewVoteRepository(db *storage.PostgresDB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *models.RoundVote) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "round_number"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"side", "updated_at"}),
	}).Create(vote).Error
	return translate(err)
}

type sideCount struct {
	RoundNumber int
	Side        models.Side
	Count       int
}

func (r *voteRepository) counts(ctx context.Context, roomID uint, round int) ([]sideCount, error) {
	q := r.db.WithContext(ctx).Model(&models.RoundVote{}).
		Select("round_number, side, COUNT(*) AS count").
		Where("room_id = ?", roomID)
	if round > 0 {
		q = q.Where("round_number = ?", round)
	}
	var rows []sideCount
	err := q.Group("round_number, side").Order("round_number ASC").Scan(&rows).Error
	return rows, translate(err)
}

func (r *voteRepository) Tally(ctx context.Context, roomID uint, round int) (models.VoteTally, error) {
	rows, err := r.counts(ctx, roomID, round)
	if err != nil {
		return models.VoteTally{}, err
	}
	t := models.VoteTally{RoundNumber: round}
	for _, row := range rows {
		addCount(&t, row)
	}
	return t, nil
}

func (r *voteRepository) TalliesByRoom(ctx context.Context, roomID uint) ([]models.VoteTally, error) {
	rows, err := r.counts(ctx, roomID, 0)
	if err != nil {
		return nil, err
	}
	var out []models.VoteTally
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].RoundNumber != row.RoundNumber {
			out = append(out, models.VoteTally{RoundNumber: row.RoundNumber})
		}
		addCount(&out[len(out)-1], row)
	}
	return out, nil
}

func addCount(t *models.VoteTally, row sideCount) {
	switch row.Side {
	case models.SidePro:
		t.Pro += row.Count
	case models.SideContra:
		t.Contra += row.Count
	}
}
