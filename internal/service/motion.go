package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

type MotionService struct {
	repos *repository.Repositories
	rooms *RoomService
}

func NewMotionService(repos *repository.Repositories, rooms *RoomService) *MotionService {
	return &MotionService{repos: repos, rooms: rooms}
}

// MotionView 辯題與使用它的公開房間
type MotionView struct {
	models.Motion
	Rooms []RoomView `json:"rooms"`
}

func (s *MotionService) CreateMotion(ctx context.Context, user Identity, topic, description string) (*models.Motion, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic is required", ErrValidation)
	}
	m := &models.Motion{Topic: topic, Description: strings.TrimSpace(description), CreatorID: user.UserID}
	if err := s.repos.Motion.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MotionService) ListMotions(ctx context.Context) ([]models.Motion, error) {
	return s.repos.Motion.FindAll(ctx)
}

func (s *MotionService) GetMotion(ctx context.Context, id uint) (*MotionView, error) {
	m, err := s.repos.Motion.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("motion", err)
	}
	rooms, err := s.repos.Room.ListByMotion(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MotionView{
		Motion: *m,
		Rooms:  lo.Map(rooms, func(r models.Room, _ int) RoomView { return s.rooms.convertModelToRoom(&r) }),
	}, nil
}
