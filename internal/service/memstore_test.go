package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

// memStore 以記憶體實作 repository 介面，行為與 postgres 的限制條件一致
type memStore struct {
	mu           sync.Mutex
	nextID       uint
	motions      map[uint]models.Motion
	rooms        map[uint]models.Room
	participants map[uint]models.Participant
	arguments    []models.Argument
	votes        map[[3]uint]models.RoundVote
	tags         []models.FallacyTag
	clock        func() time.Time

	failTransition error
	failVerdict    error
}

func newMemStore(clock func() time.Time) *memStore {
	return &memStore{
		motions:      make(map[uint]models.Motion),
		rooms:        make(map[uint]models.Room),
		participants: make(map[uint]models.Participant),
		votes:        make(map[[3]uint]models.RoundVote),
		clock:        clock,
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		Motion:      memMotions{m},
		Room:        memRooms{m},
		Participant: memParticipants{m},
		Argument:    memArguments{m},
		Vote:        memVotes{m},
		Fallacy:     memFallacies{m},
	}
}

func (m *memStore) room(id uint) models.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[id]
}

type memMotions struct{ *memStore }

func (r memMotions) Create(_ context.Context, mo *models.Motion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mo.ID = r.id()
	mo.CreatedAt = r.clock()
	r.motions[mo.ID] = *mo
	return nil
}

func (r memMotions) FindByID(_ context.Context, id uint) (*models.Motion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mo, ok := r.motions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &mo, nil
}

func (r memMotions) FindAll(_ context.Context) ([]models.Motion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Motion, 0, len(r.motions))
	for _, mo := range r.motions {
		out = append(out, mo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type memRooms struct{ *memStore }

func (r memRooms) Create(_ context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rooms {
		if existing.Code == room.Code {
			return repository.ErrDuplicate
		}
	}
	room.ID = r.id()
	room.CreatedAt = r.clock()
	r.rooms[room.ID] = *room
	return nil
}

func (r memRooms) FindByID(_ context.Context, id uint) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &room, nil
}

func (r memRooms) FindByCode(_ context.Context, code string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		if room.Code == code {
			return &room, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memRooms) filter(keep func(models.Room) bool) []models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Room
	for _, room := range r.rooms {
		if keep(room) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memRooms) ListPublic(_ context.Context, limit int) ([]models.Room, error) {
	out := r.filter(func(room models.Room) bool {
		return room.RoomConfig().IsPublic && room.Status != models.RoomStatusFinished
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memRooms) ListByMotion(_ context.Context, motionID uint) ([]models.Room, error) {
	return r.filter(func(room models.Room) bool {
		return room.MotionID == motionID && room.RoomConfig().IsPublic
	}), nil
}

func (r memRooms) ListByTimer(_ context.Context, timer models.TimerState) ([]models.Room, error) {
	return r.filter(func(room models.Room) bool {
		return room.Status == models.RoomStatusActive && room.TimerState != nil && *room.TimerState == timer
	}), nil
}

func (r memRooms) Transition(_ context.Context, id uint, guard models.PhaseGuard, next models.Phase) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTransition != nil {
		return false, r.failTransition
	}
	room, ok := r.rooms[id]
	if !ok || !guard.Admits(&room) {
		return false, nil
	}
	room.ApplyPhase(next)
	r.rooms[id] = room
	return true, nil
}

func (r memRooms) SaveVerdict(_ context.Context, id uint, winner *models.Side, text string, countRetry bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failVerdict != nil {
		return r.failVerdict
	}
	room, ok := r.rooms[id]
	if !ok {
		return repository.ErrNotFound
	}
	room.WinnerSide = winner
	room.VerdictText = &text
	if countRetry {
		room.JudgmentRetries++
	}
	r.rooms[id] = room
	return nil
}

type memParticipants struct{ *memStore }

func (r memParticipants) Create(_ context.Context, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.RoomID == p.RoomID && existing.UserID == p.UserID {
			return repository.ErrDuplicate
		}
	}
	p.ID = r.id()
	p.JoinedAt = r.clock()
	r.participants[p.ID] = *p
	return nil
}

func (r memParticipants) Find(_ context.Context, roomID, userID uint) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.RoomID == roomID && p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memParticipants) FindBySeat(_ context.Context, roomID uint, side models.Side, seat int) (*models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.participants {
		if p.RoomID == roomID && p.Side == side && p.SeatNumber == seat {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memParticipants) ListByRoom(_ context.Context, roomID uint) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Participant
	for _, p := range r.participants {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memParticipants) UpdateSeat(_ context.Context, id uint, role models.ParticipantRole, side models.Side, seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return repository.ErrNotFound
	}
	if side != models.SideNeutral {
		for _, other := range r.participants {
			if other.ID != id && other.RoomID == p.RoomID && other.Side == side && other.SeatNumber == seat {
				return repository.ErrDuplicate
			}
		}
	}
	p.Role, p.Side, p.SeatNumber = role, side, seat
	r.participants[id] = p
	return nil
}

func (r memParticipants) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, id)
	return nil
}

type memArguments struct{ *memStore }

func (r memArguments) Create(_ context.Context, arg *models.Argument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	arg.ID = r.id()
	arg.CreatedAt = r.clock()
	r.arguments = append(r.arguments, *arg)
	return nil
}

func (r memArguments) FindByID(_ context.Context, id uint) (*models.Argument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.arguments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memArguments) ListByRoom(_ context.Context, roomID uint) ([]models.Argument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Argument
	for _, a := range r.arguments {
		if a.RoomID == roomID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memArguments) ListByRoomWithTags(ctx context.Context, roomID uint) ([]models.Argument, error) {
	args, _ := r.ListByRoom(ctx, roomID)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range args {
		for _, t := range r.tags {
			if t.ArgumentID == args[i].ID {
				args[i].FallacyTags = append(args[i].FallacyTags, t)
			}
		}
	}
	return args, nil
}

func (r memArguments) LastByRoom(ctx context.Context, roomID uint) (*models.Argument, error) {
	args, _ := r.ListByRoom(ctx, roomID)
	if len(args) == 0 {
		return nil, repository.ErrNotFound
	}
	return &args[len(args)-1], nil
}

type memVotes struct{ *memStore }

func (r memVotes) Upsert(_ context.Context, v *models.RoundVote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := [3]uint{v.RoomID, uint(v.RoundNumber), v.UserID}
	if existing, ok := r.votes[key]; ok {
		v.ID = existing.ID
	} else {
		v.ID = r.id()
	}
	r.votes[key] = *v
	return nil
}

func (r memVotes) Tally(_ context.Context, roomID uint, round int) (models.VoteTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := models.VoteTally{RoundNumber: round}
	for _, v := range r.votes {
		if v.RoomID != roomID || v.RoundNumber != round {
			continue
		}
		if v.Side == models.SidePro {
			t.Pro++
		} else {
			t.Contra++
		}
	}
	return t, nil
}

func (r memVotes) TalliesByRoom(ctx context.Context, roomID uint) ([]models.VoteTally, error) {
	r.mu.Lock()
	rounds := map[int]bool{}
	for _, v := range r.votes {
		if v.RoomID == roomID {
			rounds[v.RoundNumber] = true
		}
	}
	r.mu.Unlock()

	keys := make([]int, 0, len(rounds))
	for k := range rounds {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]models.VoteTally, 0, len(keys))
	for _, k := range keys {
		t, _ := r.Tally(ctx, roomID, k)
		out = append(out, t)
	}
	return out, nil
}

type memFallacies struct{ *memStore }

func (r memFallacies) Create(_ context.Context, tag *models.FallacyTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag.ID = r.id()
	tag.CreatedAt = r.clock()
	r.tags = append(r.tags, *tag)
	return nil
}

func (r memFallacies) ListByArgument(_ context.Context, argumentID uint) ([]models.FallacyTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FallacyTag
	for _, t := range r.tags {
		if t.ArgumentID == argumentID {
			out = append(out, t)
		}
	}
	return out, nil
}
