package service

import (
	"log/slog"

	"debate_arena/internal/repository"
	"debate_arena/pkg/config"
)

type Services struct {
	Motion    *MotionService
	Room      *RoomService
	Vote      *VoteService
	Judge     *JudgeService
	WebSocket *WebSocketService
}

// NewServices bc 是實際推送事件的對象：單機時就是 hub，有 redis 時是 relay
func NewServices(repos *repository.Repositories, hub *WebSocketService, bc Broadcaster, reasoner Reasoner, cfg config.JudgeConfig, log *slog.Logger) *Services {
	if bc == nil {
		bc = hub
	}
	judge := NewJudgeService(repos, reasoner, bc, cfg, log.With("component", "judge"))
	roomService := NewRoomService(repos, bc, judge,
		WithLogger(log.With("component", "room")),
		WithMaxManualRetries(cfg.MaxManualRetries),
	)

	return &Services{
		Motion:    NewMotionService(repos, roomService),
		Room:      roomService,
		Vote:      NewVoteService(repos, bc, roomService),
		Judge:     judge,
		WebSocket: hub,
	}
}
