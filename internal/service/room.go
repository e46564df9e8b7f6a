package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"debate_arena/internal/models"
	"debate_arena/internal/repository"
)

const (
	roomCodePrefix   = "DEBATE-"
	roomCodeAttempts = 3
	publicRoomLimit  = 50
	continuationTTL  = 10 * time.Second
)

var roomCodeCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// JudgeQueue 比賽結束後把判決交給背景工作
type JudgeQueue interface {
	Enqueue(room *models.Room, manual bool) error
}

// RoomView 提供給 API 的房間資料
type RoomView struct {
	ID              uint              `json:"id"`
	Code            string            `json:"code"`
	MotionID        uint              `json:"motion_id"`
	Topic           string            `json:"topic"`
	HostUserID      uint              `json:"host_user_id"`
	Status          models.RoomStatus `json:"status"`
	Config          models.RoomConfig `json:"config"`
	CurrentSpeaker  *models.Speaker   `json:"current_speaker"`
	Round           int               `json:"round,omitempty"`
	TimerState      models.TimerState `json:"timer_state,omitempty"`
	TurnDeadline    *time.Time        `json:"turn_deadline"`
	WinnerSide      *models.Side      `json:"winner_side"`
	VerdictText     *string           `json:"verdict_text"`
	JudgmentRetries int               `json:"judgment_retries"`
	CreatedAt       time.Time         `json:"created_at"`
}

// JoinResult Rejoined 表示使用者原本就在房間內
type JoinResult struct {
	Room        RoomView            `json:"room"`
	Participant *models.Participant `json:"participant"`
	Rejoined    bool                `json:"rejoined"`
}

type RoomService struct {
	repos            *repository.Repositories
	bc               Broadcaster
	judge            JudgeQueue
	sessions         *sessionRegistry
	after            AfterFunc
	now              func() time.Time
	log              *slog.Logger
	maxManualRetries int
}

type RoomOption func(*RoomService)

// WithClock 替換時間來源
func WithClock(now func() time.Time) RoomOption {
	return func(s *RoomService) { s.now = now }
}

// WithAfterFunc 替換延遲工作的排程器
func WithAfterFunc(after AfterFunc) RoomOption {
	return func(s *RoomService) { s.after = after }
}

func WithLogger(l *slog.Logger) RoomOption {
	return func(s *RoomService) { s.log = l }
}

func WithMaxManualRetries(n int) RoomOption {
	return func(s *RoomService) { s.maxManualRetries = n }
}

func NewRoomService(repos *repository.Repositories, bc Broadcaster, judge JudgeQueue, opts ...RoomOption) *RoomService {
	s := &RoomService{
		repos:            repos,
		bc:               bc,
		judge:            judge,
		sessions:         newSessionRegistry(),
		after:            realAfterFunc,
		now:              func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		log:              slog.Default(),
		maxManualRetries: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uint) (*RoomView, error) {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	v := s.convertModelToRoom(room)
	return &v, nil
}

func (s *RoomService) GetRoomByCode(ctx context.Context, code string) (*RoomView, error) {
	room, err := s.repos.Room.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, notFound("room", err)
	}
	v := s.convertModelToRoom(room)
	return &v, nil
}

// ListPublicRooms 列出尚未結束的公開房間
func (s *RoomService) ListPublicRooms(ctx context.Context) ([]RoomView, error) {
	rooms, err := s.repos.Room.ListPublic(ctx, publicRoomLimit)
	if err != nil {
		return nil, err
	}
	return lo.Map(rooms, func(r models.Room, _ int) RoomView { return s.convertModelToRoom(&r) }), nil
}

func (s *RoomService) CreateRoom(ctx context.Context, host Identity, motionID uint, cfg models.RoomConfig) (*RoomView, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	motion, err := s.repos.Motion.FindByID(ctx, motionID)
	if err != nil {
		return nil, notFound("motion", err)
	}

	var room *models.Room
	for attempt := 0; attempt < roomCodeAttempts; attempt++ {
		room = &models.Room{
			Code:       roomCodePrefix + lo.RandomString(4, roomCodeCharset),
			MotionID:   motion.ID,
			Topic:      motion.Topic,
			HostUserID: host.UserID,
			Status:     models.RoomStatusWaiting,
		}
		room.SetRoomConfig(cfg)
		err = s.repos.Room.Create(ctx, room)
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: could not allocate a room code", ErrConflict)
		}
		return nil, err
	}

	hostRow := &models.Participant{
		RoomID:   room.ID,
		UserID:   host.UserID,
		Username: host.Username,
		Role:     models.RoleHost,
		Side:     models.SideNeutral,
	}
	if err := s.repos.Participant.Create(ctx, hostRow); err != nil {
		return nil, err
	}

	s.log.Info("room created", "room", room.Code, "format", cfg.Format, "host", host.UserID)
	v := s.convertModelToRoom(room)
	return &v, nil
}

// JoinRoom 以觀眾身分加入，已在房間內的使用者直接回傳原本的資料
func (s *RoomService) JoinRoom(ctx context.Context, user Identity, code string) (*JoinResult, error) {
	room, err := s.repos.Room.FindByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, notFound("room", err)
	}

	p, err := s.repos.Participant.Find(ctx, room.ID, user.UserID)
	if err == nil {
		return &JoinResult{Room: s.convertModelToRoom(room), Participant: p, Rejoined: true}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	p = &models.Participant{
		RoomID:   room.ID,
		UserID:   user.UserID,
		Username: user.Username,
		Role:     models.RoleSpectator,
		Side:     models.SideNeutral,
	}
	if err := s.repos.Participant.Create(ctx, p); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		// 同一位使用者同時加入兩次
		if p, err = s.repos.Participant.Find(ctx, room.ID, user.UserID); err != nil {
			return nil, err
		}
		return &JoinResult{Room: s.convertModelToRoom(room), Participant: p, Rejoined: true}, nil
	}

	s.publishSeatMap(ctx, room)
	return &JoinResult{Room: s.convertModelToRoom(room), Participant: p}, nil
}

// LeaveRoom 只有觀眾可以離開，辯手與主持人的資料保留
func (s *RoomService) LeaveRoom(ctx context.Context, user Identity, roomID uint) error {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	p, err := s.repos.Participant.Find(ctx, roomID, user.UserID)
	if err != nil {
		return notFound("participant", err)
	}
	if p.Role != models.RoleSpectator {
		return fmt.Errorf("%w: only spectators can leave a room", ErrConflict)
	}
	if err := s.repos.Participant.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.publishSeatMap(ctx, room)
	return nil
}

func (s *RoomService) SeatMap(ctx context.Context, roomID uint) ([]SeatView, error) {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	return s.seatMap(ctx, room)
}

func (s *RoomService) seatMap(ctx context.Context, room *models.Room) ([]SeatView, error) {
	ps, err := s.repos.Participant.ListByRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	cfg := room.RoomConfig()
	return lo.Map(ps, func(p models.Participant, _ int) SeatView {
		v := SeatView{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Username:      p.Username,
			Role:          p.Role,
			Side:          p.Side,
			SeatNumber:    p.SeatNumber,
		}
		if p.Side.Debating() {
			v.RoleTitle = cfg.RoleTitle(p.Side, p.SeatNumber)
		}
		return v
	}), nil
}

func (s *RoomService) publishSeatMap(ctx context.Context, room *models.Room) {
	seats, err := s.seatMap(ctx, room)
	if err != nil {
		s.log.Error("load seat map", "room", room.Code, "error", err)
		return
	}
	s.bc.BroadcastToRoom(room.Code, Event{Type: EventSeatMapChanged, Payload: SeatMapPayload{RoomID: room.ID, Participants: seats}})
}

// ClaimSeat 入座；席位必須是空的，比賽中不可換邊，觀眾只有在允許中途加入時才能入座
func (s *RoomService) ClaimSeat(ctx context.Context, user Identity, roomID uint, side models.Side, seat int) error {
	if !side.Debating() {
		return fmt.Errorf("%w: side must be PRO or CONTRA", ErrValidation)
	}

	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	cfg := room.RoomConfig()
	if seat < 1 || seat > cfg.SeatsPerSide() {
		return fmt.Errorf("%w: seat must be between 1 and %d", ErrValidation, cfg.SeatsPerSide())
	}
	if room.Status == models.RoomStatusFinished {
		return fmt.Errorf("%w: debate already finished", ErrConflict)
	}

	p, err := s.repos.Participant.Find(ctx, roomID, user.UserID)
	if err != nil {
		return notFound("participant", err)
	}
	if p.Seated(side, seat) {
		return nil
	}

	if room.Status == models.RoomStatusActive {
		if p.IsDebater() && p.Side != side {
			return fmt.Errorf("%w: cannot switch sides during the debate", ErrConflict)
		}
		if !p.IsDebater() && !cfg.AllowLateJoin {
			return fmt.Errorf("%w: late join is disabled for this room", ErrConflict)
		}
	}

	occupant, err := s.repos.Participant.FindBySeat(ctx, roomID, side, seat)
	switch {
	case err == nil && occupant.ID != p.ID:
		return fmt.Errorf("%w: seat %s %d is occupied by %s", ErrConflict, side, seat, occupant.Username)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	if err := s.repos.Participant.UpdateSeat(ctx, p.ID, models.RoleDebater, side, seat); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: seat %s %d is occupied", ErrConflict, side, seat)
		}
		return err
	}

	s.log.Info("seat claimed", "room", room.Code, "user", user.UserID, "side", side, "seat", seat)
	s.publishSeatMap(ctx, room)
	return nil
}

// Start 只有主持人可以開始，開場進入 WAITING_INPUT，第一位發言者開始打字前不倒數
func (s *RoomService) Start(ctx context.Context, user Identity, roomID uint) error {
	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	if room.HostUserID != user.UserID {
		return fmt.Errorf("%w: only the host can start the debate", ErrForbidden)
	}
	if room.Status != models.RoomStatusWaiting {
		return fmt.Errorf("%w: debate already started", ErrConflict)
	}

	next := models.Debate{Speaker: FirstSpeaker(), Timer: models.TimerWaitingInput}
	ok, err := s.repos.Room.Transition(ctx, roomID, models.PhaseGuard{Status: models.RoomStatusWaiting}, next)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: debate already started", ErrConflict)
	}
	sess.cancel()
	room.ApplyPhase(next)

	s.log.Info("debate started", "room", room.Code, "speaker", next.Speaker, "round", next.Speaker.Round())
	s.bc.BroadcastToRoom(room.Code, statusEvent(room))
	s.bc.BroadcastToRoom(room.Code, timerEvent(room, s.now()))
	return nil
}

// SubmitArgument 新增一段發言到逐字稿
func (s *RoomService) SubmitArgument(ctx context.Context, user Identity, roomID uint, content string, side models.Side, round int) (*models.Argument, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if !side.Debating() {
		return nil, fmt.Errorf("%w: side must be PRO or CONTRA", ErrValidation)
	}

	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	if room.Status != models.RoomStatusActive {
		return nil, fmt.Errorf("%w: debate is not active", ErrConflict)
	}
	if slots := room.RoomConfig().SlotCount(); round < 1 || round > slots {
		return nil, fmt.Errorf("%w: round must be between 1 and %d", ErrValidation, slots)
	}

	p, err := s.repos.Participant.Find(ctx, roomID, user.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: not a participant of this room", ErrForbidden)
		}
		return nil, err
	}
	if !p.IsDebater() || p.Side != side {
		return nil, fmt.Errorf("%w: only %s debaters can speak for %s", ErrForbidden, side, side)
	}

	arg := &models.Argument{
		RoomID:      roomID,
		UserID:      user.UserID,
		Username:    p.Username,
		Content:     content,
		Side:        side,
		RoundNumber: round,
	}
	if err := s.repos.Argument.Create(ctx, arg); err != nil {
		return nil, err
	}

	s.bc.BroadcastToRoom(room.Code, Event{Type: EventArgumentAdded, Payload: arg})
	return arg, nil
}

// EndTurn 結束目前發言者的回合
// from 與目前發言者不同時 (重複點擊、過期的請求) 直接忽略
func (s *RoomService) EndTurn(ctx context.Context, user Identity, roomID uint, from models.Speaker) error {
	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	d, ok := room.Phase().(models.Debate)
	if !ok || d.Speaker != from {
		s.log.Debug("stale end_turn ignored", "room", room.Code, "from", from)
		return nil
	}
	allowed, err := s.holdsTurn(ctx, room, user, d.Speaker)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: only the current speaker or the host can end the turn", ErrForbidden)
	}

	guard := models.PhaseGuard{Status: models.RoomStatusActive, Speaker: &from}
	cfg := room.RoomConfig()
	next, gameOver := NextSpeaker(cfg, from)
	if gameOver {
		return s.finishLocked(ctx, sess, room, guard)
	}

	content := ""
	last, err := s.repos.Argument.LastByRoom(ctx, roomID)
	switch {
	case err == nil:
		content = last.Content
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}
	pause := ReadingPause(content)
	now := s.now()
	endsAt := now.Add(pause)

	phase := models.Debate{Speaker: next, Timer: models.TimerReading, ReadingEndsAt: &endsAt}
	ok, err = s.repos.Room.Transition(ctx, roomID, guard, phase)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	room.ApplyPhase(phase)

	s.log.Info("turn advanced", "room", room.Code, "speaker", next, "round", next.Round(), "reading", pause)
	s.bc.BroadcastToRoom(room.Code, statusEvent(room))
	s.bc.BroadcastToRoom(room.Code, timerEvent(room, now))
	s.armReading(sess, room.ID, next, pause)
	return nil
}

func (s *RoomService) finishLocked(ctx context.Context, sess *session, room *models.Room, guard models.PhaseGuard) error {
	ok, err := s.repos.Room.Transition(ctx, room.ID, guard, models.Finished{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	sess.cancel()
	room.ApplyPhase(models.Finished{})

	s.log.Info("debate finished", "room", room.Code)
	s.bc.BroadcastToRoom(room.Code, statusEvent(room))
	s.bc.BroadcastToRoom(room.Code, timerEvent(room, s.now()))

	// 判決在背景進行，不影響狀態轉換的結果
	if err := s.judge.Enqueue(room, false); err != nil {
		s.log.Warn("enqueue judgment", "room", room.Code, "error", err)
	}
	return nil
}

// armReading 閱讀時間結束後自動開始發言倒數，呼叫者必須持有 sess.mu
func (s *RoomService) armReading(sess *session, roomID uint, sp models.Speaker, d time.Duration) {
	sess.schedule(s.after, d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), continuationTTL)
		defer cancel()
		if err := s.openCountdownLocked(ctx, sess, roomID, sp, true); err != nil {
			s.log.Error("open countdown after reading", "room_id", roomID, "speaker", sp, "error", err)
		}
	})
}

// TriggerCountdown 發言者開始打字或按下開始時開啟倒數
// 已有未到期的倒數、或正在不限時發言時不做任何事
func (s *RoomService) TriggerCountdown(ctx context.Context, user Identity, roomID uint) error {
	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	d, ok := room.Phase().(models.Debate)
	if !ok {
		return fmt.Errorf("%w: debate is not active", ErrConflict)
	}
	allowed, err := s.holdsTurn(ctx, room, user, d.Speaker)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: only the current speaker or the host can start the timer", ErrForbidden)
	}
	return s.openCountdownLocked(ctx, sess, roomID, d.Speaker, false)
}

// openCountdownLocked 進入 SPEAKING 並寫入絕對的截止時間，呼叫者必須持有 sess.mu
// 閱讀時間只能由延遲工作結束 (fromReading)
func (s *RoomService) openCountdownLocked(ctx context.Context, sess *session, roomID uint, sp models.Speaker, fromReading bool) error {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	if d, ok := room.Phase().(models.Debate); ok && d.Timer == models.TimerReading && !fromReading {
		return nil
	}

	now := s.now()
	guard := models.PhaseGuard{Status: models.RoomStatusActive, Speaker: &sp, CountdownFreeAt: &now}
	if !guard.Admits(room) {
		return nil
	}

	cfg := room.RoomConfig()
	var deadline *time.Time
	if !cfg.Unbounded() {
		t := now.Add(cfg.SpeechDuration())
		deadline = &t
	}
	next := models.Debate{Speaker: sp, Timer: models.TimerSpeaking, Deadline: deadline}
	ok, err := s.repos.Room.Transition(ctx, roomID, guard, next)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	sess.cancel()
	room.ApplyPhase(next)

	s.log.Info("countdown opened", "room", room.Code, "speaker", sp, "round", sp.Round(), "deadline", deadline)
	s.bc.BroadcastToRoom(room.Code, timerEvent(room, now))
	return nil
}

// Typing 轉發打字內容給房間內其他人；目前發言者在 WAITING_INPUT 時開始打字會開啟倒數
func (s *RoomService) Typing(ctx context.Context, user Identity, roomID uint, clientID, text string) error {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	s.bc.BroadcastToRoomExcept(room.Code, Event{
		Type:    EventTyping,
		Payload: TypingPayload{UserID: user.UserID, Username: user.Username, Text: text},
	}, clientID)

	d, ok := room.Phase().(models.Debate)
	if !ok || d.Timer != models.TimerWaitingInput || strings.TrimSpace(text) == "" {
		return nil
	}
	p, err := s.repos.Participant.FindBySeat(ctx, roomID, d.Speaker.Side, room.RoomConfig().SeatFor(d.Speaker))
	if err != nil || p.UserID != user.UserID {
		return nil
	}

	sess := s.sessions.get(roomID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.openCountdownLocked(ctx, sess, roomID, d.Speaker, false)
}

// Sync 重新連線時只依持久化的狀態回覆，不會重設或暫停倒數
func (s *RoomService) Sync(ctx context.Context, roomID uint) ([]Event, error) {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return nil, notFound("room", err)
	}
	seats, err := s.seatMap(ctx, room)
	if err != nil {
		return nil, err
	}

	events := []Event{
		{Type: EventSeatMapChanged, Payload: SeatMapPayload{RoomID: room.ID, Participants: seats}},
		statusEvent(room),
		timerEvent(room, s.now()),
	}
	if room.HasVerdict() {
		events = append(events, verdictEvent(room))
	}
	return events, nil
}

// RequestJudgment 主持人或辯手在比賽結束後要求重新判決
func (s *RoomService) RequestJudgment(ctx context.Context, user Identity, roomID uint) error {
	room, err := s.repos.Room.FindByID(ctx, roomID)
	if err != nil {
		return notFound("room", err)
	}
	if room.Status != models.RoomStatusFinished {
		return fmt.Errorf("%w: debate is not finished", ErrConflict)
	}
	if room.HostUserID != user.UserID {
		p, err := s.repos.Participant.Find(ctx, roomID, user.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err != nil || !p.IsDebater() {
			return fmt.Errorf("%w: only the host or a debater can request judgment", ErrForbidden)
		}
	}
	if room.JudgmentRetries >= s.maxManualRetries {
		return fmt.Errorf("%w: judgment retry limit reached", ErrConflict)
	}
	return s.judge.Enqueue(room, true)
}

// Recover 啟動時替停在閱讀時間的房間重新排程，已過期的立即執行
func (s *RoomService) Recover(ctx context.Context) error {
	rooms, err := s.repos.Room.ListByTimer(ctx, models.TimerReading)
	if err != nil {
		return err
	}
	now := s.now()
	for i := range rooms {
		room := &rooms[i]
		d, ok := room.Phase().(models.Debate)
		if !ok {
			continue
		}
		delay := time.Duration(0)
		if d.ReadingEndsAt != nil && d.ReadingEndsAt.After(now) {
			delay = d.ReadingEndsAt.Sub(now)
		}

		sess := s.sessions.get(room.ID)
		sess.mu.Lock()
		s.armReading(sess, room.ID, d.Speaker, delay)
		sess.mu.Unlock()

		s.log.Info("reading continuation recovered", "room", room.Code, "speaker", d.Speaker, "delay", delay)
	}
	return nil
}

// Shutdown 取消所有尚未執行的延遲工作
func (s *RoomService) Shutdown() {
	s.sessions.stopAll()
}

// holdsTurn 主持人或坐在目前發言席位上的人
func (s *RoomService) holdsTurn(ctx context.Context, room *models.Room, user Identity, sp models.Speaker) (bool, error) {
	if room.HostUserID == user.UserID {
		return true, nil
	}
	p, err := s.repos.Participant.FindBySeat(ctx, room.ID, sp.Side, room.RoomConfig().SeatFor(sp))
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return p.UserID == user.UserID, nil
}

func (s *RoomService) convertModelToRoom(room *models.Room) RoomView {
	v := RoomView{
		ID:              room.ID,
		Code:            room.Code,
		MotionID:        room.MotionID,
		Topic:           room.Topic,
		HostUserID:      room.HostUserID,
		Status:          room.Status,
		Config:          room.RoomConfig(),
		WinnerSide:      room.WinnerSide,
		VerdictText:     room.VerdictText,
		JudgmentRetries: room.JudgmentRetries,
		CreatedAt:       room.CreatedAt,
	}
	if d, ok := room.Phase().(models.Debate); ok {
		sp := d.Speaker
		v.CurrentSpeaker = &sp
		v.Round = sp.Round()
		v.TimerState = d.Timer
		v.TurnDeadline = d.Deadline
	}
	return v
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
