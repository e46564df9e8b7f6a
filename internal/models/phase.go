package models

import "time"

// Phase 房間目前所處的階段，取代用 null 欄位隱含狀態的寫法
// 只會是 Lobby、Debate、Finished 其中之一
type Phase interface {
	Status() RoomStatus
	isPhase()
}

// Lobby 等待開始
type Lobby struct{}

// Debate 進行中，Speaker 一定存在
type Debate struct {
	Speaker Speaker
	Timer   TimerState
	// 只有 SPEAKING 且有限時才會有值
	Deadline *time.Time
	// 只有 READING 才會有值
	ReadingEndsAt *time.Time
}

// Finished 已結束；Winner 在判決寫入前為 nil
type Finished struct {
	Winner *Side
}

func (Lobby) Status() RoomStatus    { return RoomStatusWaiting }
func (Debate) Status() RoomStatus   { return RoomStatusActive }
func (Finished) Status() RoomStatus { return RoomStatusFinished }

func (Lobby) isPhase()    {}
func (Debate) isPhase()   {}
func (Finished) isPhase() {}

// Remaining 距離截止還剩多少時間，不限時或尚未開始倒數時 ok 為 false
func (d Debate) Remaining(now time.Time) (time.Duration, bool) {
	if d.Deadline == nil {
		return 0, false
	}
	left := d.Deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Phase 由資料列還原出目前階段
func (r *Room) Phase() Phase {
	switch r.Status {
	case RoomStatusActive:
		d := Debate{
			Deadline:      r.TurnDeadline,
			ReadingEndsAt: r.ReadingEndsAt,
			Timer:         TimerWaitingInput,
		}
		if r.CurrentSpeakerSide != nil {
			d.Speaker.Side = *r.CurrentSpeakerSide
		}
		if r.CurrentSpeakerSeat != nil {
			d.Speaker.Seat = *r.CurrentSpeakerSeat
		}
		if r.TimerState != nil {
			d.Timer = *r.TimerState
		}
		return d
	case RoomStatusFinished:
		return Finished{Winner: r.WinnerSide}
	default:
		return Lobby{}
	}
}

// ApplyPhase 把階段寫回資料列欄位
func (r *Room) ApplyPhase(p Phase) {
	r.Status = p.Status()
	r.CurrentSpeakerSide = nil
	r.CurrentSpeakerSeat = nil
	r.TimerState = nil
	r.TurnDeadline = nil
	r.ReadingEndsAt = nil

	switch p := p.(type) {
	case Debate:
		side, seat, timer := p.Speaker.Side, p.Speaker.Seat, p.Timer
		r.CurrentSpeakerSide = &side
		r.CurrentSpeakerSeat = &seat
		r.TimerState = &timer
		r.TurnDeadline = p.Deadline
		r.ReadingEndsAt = p.ReadingEndsAt
	case Finished:
		if p.Winner != nil {
			r.WinnerSide = p.Winner
		}
	}
}

// PhaseColumns 轉成 UPDATE 使用的欄位
// 所有狀態相關欄位一起寫入，不會留下半套的狀態
func PhaseColumns(p Phase) map[string]interface{} {
	cols := map[string]interface{}{
		"status":               p.Status(),
		"current_speaker_side": nil,
		"current_speaker_seat": nil,
		"timer_state":          nil,
		"turn_deadline":        nil,
		"reading_ends_at":      nil,
	}
	if d, ok := p.(Debate); ok {
		cols["current_speaker_side"] = d.Speaker.Side
		cols["current_speaker_seat"] = d.Speaker.Seat
		cols["timer_state"] = d.Timer
		cols["turn_deadline"] = d.Deadline
		cols["reading_ends_at"] = d.ReadingEndsAt
	}
	return cols
}

// PhaseGuard 狀態轉換的前置條件，條件不成立時更新 0 筆
type PhaseGuard struct {
	Status RoomStatus
	// 非 nil 時要求目前發言者相同
	Speaker *Speaker
	// 非 nil 時要求沒有尚未到期的倒數，也不在不限時的發言中
	CountdownFreeAt *time.Time
}

// Admits 在記憶體中檢查同樣的條件
func (g PhaseGuard) Admits(r *Room) bool {
	if r.Status != g.Status {
		return false
	}
	if g.Speaker != nil {
		if r.CurrentSpeakerSide == nil || r.CurrentSpeakerSeat == nil {
			return false
		}
		if *r.CurrentSpeakerSide != g.Speaker.Side || *r.CurrentSpeakerSeat != g.Speaker.Seat {
			return false
		}
	}
	if g.CountdownFreeAt != nil {
		if r.TurnDeadline == nil {
			if r.TimerState != nil && *r.TimerState == TimerSpeaking {
				return false
			}
		} else if r.TurnDeadline.After(*g.CountdownFreeAt) {
			return false
		}
	}
	return true
}
