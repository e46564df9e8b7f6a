package service

import (
	"time"

	"debate_arena/internal/models"
)

// 推送給客戶端的事件名稱
const (
	EventSeatMapChanged   = "seat_map_changed"
	EventArgumentAdded    = "argument_added"
	EventStatusChanged    = "status_changed"
	EventTimerChanged     = "timer_changed"
	EventVoteTally        = "vote_tally"
	EventFallacyAdded     = "fallacy_added"
	EventJudgingStarted   = "judging_started"
	EventJudgingFailed    = "judging_failed"
	EventVerdictPublished = "verdict_published"
	EventTyping           = "typing"
	EventError            = "error"
	EventJoined           = "joined"
)

// Event 推送給房間內客戶端的訊息
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broadcaster 依房間代碼推送事件
type Broadcaster interface {
	BroadcastToRoom(code string, ev Event)
	// BroadcastToRoomExcept 略過指定的連線 (例如打字的人自己)
	BroadcastToRoomExcept(code string, ev Event, exceptClientID string)
}

type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

type SeatView struct {
	ParticipantID uint                   `json:"participant_id"`
	UserID        uint                   `json:"user_id"`
	Username      string                 `json:"username"`
	Role          models.ParticipantRole `json:"role"`
	Side          models.Side            `json:"side"`
	SeatNumber    int                    `json:"seat_number"`
	RoleTitle     string                 `json:"role_title,omitempty"`
}

type SeatMapPayload struct {
	RoomID       uint       `json:"room_id"`
	Participants []SeatView `json:"participants"`
}

type StatusPayload struct {
	Status         models.RoomStatus `json:"status"`
	CurrentSpeaker *models.Speaker   `json:"current_speaker"`
	Round          int               `json:"round,omitempty"`
	RoleTitle      string            `json:"role_title,omitempty"`
}

// TimerPayload Deadline 為 nil 代表沒有倒數
type TimerPayload struct {
	SubState         models.TimerState `json:"sub_state,omitempty"`
	Deadline         *time.Time        `json:"deadline"`
	Side             *models.Side      `json:"side"`
	Unbounded        bool              `json:"unbounded,omitempty"`
	RemainingSeconds *int              `json:"remaining_seconds,omitempty"`
	ReadingSeconds   int               `json:"reading_seconds,omitempty"`
	ReadingEndsAt    *time.Time        `json:"reading_ends_at,omitempty"`
}

type FallacyPayload struct {
	ArgumentID uint              `json:"argument_id"`
	Tag        models.FallacyTag `json:"tag"`
}

type JudgingPayload struct {
	RoomID uint `json:"room_id"`
	Manual bool `json:"manual"`
}

// JudgingFailedPayload 判決沒有產生新的結果，已存在的判決不變
type JudgingFailedPayload struct {
	RoomID uint   `json:"room_id"`
	Manual bool   `json:"manual"`
	Reason string `json:"reason"`
}

type VerdictPayload struct {
	Text       string       `json:"text"`
	WinnerSide *models.Side `json:"winner_side"`
}

type TypingPayload struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

type ErrorPayload struct {
	Command string `json:"command"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusEvent(room *models.Room) Event {
	p := StatusPayload{Status: room.Status}
	if d, ok := room.Phase().(models.Debate); ok {
		sp := d.Speaker
		p.CurrentSpeaker = &sp
		p.Round = sp.Round()
		cfg := room.RoomConfig()
		p.RoleTitle = cfg.RoleTitle(sp.Side, cfg.SeatFor(sp))
	}
	return Event{Type: EventStatusChanged, Payload: p}
}

// timerEvent 依持久化的狀態算出倒數資訊，剩餘時間一律用 deadline - now
func timerEvent(room *models.Room, now time.Time) Event {
	p := TimerPayload{}
	d, ok := room.Phase().(models.Debate)
	if !ok {
		return Event{Type: EventTimerChanged, Payload: p}
	}

	side := d.Speaker.Side
	p.Side = &side
	p.SubState = d.Timer
	p.Deadline = d.Deadline
	if left, ok := d.Remaining(now); ok {
		secs := int(left / time.Second)
		p.RemainingSeconds = &secs
	}
	switch d.Timer {
	case models.TimerSpeaking:
		p.Unbounded = d.Deadline == nil
	case models.TimerReading:
		p.ReadingEndsAt = d.ReadingEndsAt
		if d.ReadingEndsAt != nil {
			if left := d.ReadingEndsAt.Sub(now); left > 0 {
				p.ReadingSeconds = int((left + time.Second - 1) / time.Second)
			}
		}
	}
	return Event{Type: EventTimerChanged, Payload: p}
}

func verdictEvent(room *models.Room) Event {
	p := VerdictPayload{WinnerSide: room.WinnerSide}
	if room.VerdictText != nil {
		p.Text = *room.VerdictText
	}
	return Event{Type: EventVerdictPublished, Payload: p}
}

// ErrorEvent 只回傳給送出指令的連線
func ErrorEvent(command string, err error) Event {
	return Event{Type: EventError, Payload: ErrorPayload{Command: command, Code: ErrorCode(err), Message: err.Error()}}
}
