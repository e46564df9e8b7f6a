package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

// VoteService 每回合投票與謬誤標記，只是資訊，不影響比賽流程
type VoteService struct {
	repos *repository.Repositories
	bc    Broadcaster
	rooms *RoomService
}

func NewVoteService(repos *repository.Repositories, bc Broadcaster, rooms *RoomService) *VoteService {
	return &VoteService{repos: repos, bc: bc, rooms: rooms}
}

// CastVote 同一回合重投會覆蓋前一票，只推送該回合的票數
func (s *VoteService) CastVote(ctx context.Context, user Identity, roomID uint, round int, side models.Side) (*models.VoteTally, error) {
	if !side.Debating() {
		return nil, fmt.Errorf("%w: side must be PRO or CONTRA", ErrValidation)
	}

	sess := s.rooms.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	if room.Status == models.RoomStatusWaiting {
		return nil, fmt.Errorf("%w: debate has not started", ErrConflict)
	}
	if slots := room.RoomConfig().SlotCount(); round < 1 || round > slots {
		return nil, fmt.Errorf("%w: round must be between 1 and %d", ErrValidation, slots)
	}
	if _, err := s.repos.Participant.Find(ctx, roomID, user.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: join the room before voting", ErrForbidden)
		}
		return nil, err
	}

	vote := &models.RoundVote{RoomID: roomID, RoundNumber: round, UserID: user.UserID, Side: side}
	if err := s.repos.Vote.Upsert(ctx, vote); err != nil {
		return nil, err
	}
	tally, err := s.repos.Vote.Tally(ctx, roomID, round)
	if err != nil {
		return nil, err
	}

	s.bc.BroadcastToRoom(room.Code, Event{Type: EventVoteTally, Payload: tally})
	return &tally, nil
}

// Tallies 所有回合的票數
func (s *VoteService) Tallies(ctx context.Context, roomID uint) ([]models.VoteTally, error) {
	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, notFound("room", err)
	}
	return s.repos.Vote.TalliesByRoom(ctx, roomID)
}

// TagFallacy 對一段發言加上謬誤標記
func (s *VoteService) TagFallacy(ctx context.Context, user Identity, argumentID uint, kind models.FallacyType, text string) (*models.FallacyTag, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown fallacy type %q", ErrValidation, kind)
	}
	arg, err := s.repos.Argument.FindByID(ctx, argumentID)
	if err != nil {
		return nil, notFound("argument", err)
	}
	room, err := s.repos.Room.FindByID(ctx, arg.RoomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	p, err := s.repos.Participant.Find(ctx, room.ID, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: join the room before tagging", ErrForbidden)
		}
		return nil, err
	}

	sess := s.rooms.sessions.get(room.ID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	tag := &models.FallacyTag{
		ArgumentID:  arg.ID,
		UserID:      user.UserID,
		Username:    p.Username,
		FallacyType: kind,
		Description: strings.TrimSpace(text),
	}
	if err := s.repos.Fallacy.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.bc.BroadcastToRoom(room.Code, Event{Type: EventFallacyAdded, Payload: FallacyPayload{ArgumentID: arg.ID, Tag: *tag}})
	return tag, nil
}

// Transcript 逐字稿與每段的謬誤標記
func (s *VoteService) Transcript(ctx context.Context, roomID uint) ([]models.Argument, error) {
	if _, err := s.repos.Room.FindByID(ctx, roomID); err != nil {
		return nil, notFound("room", err)
	}
	return s.repos.Argument.ListByRoomWithTags(ctx, roomID)
}
