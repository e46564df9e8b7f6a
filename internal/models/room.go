package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room 表示一個辯論房間
// 狀態欄位只能透過 Phase / PhaseColumns 一起讀寫，避免 current_speaker 與 turn_deadline 互相矛盾
type Room struct {
	gorm.Model
	Code               string                         `gorm:"size:16;uniqueIndex;not null"`
	MotionID           uint                           `gorm:"index;not null"`
	Topic              string                         `gorm:"type:text;not null"`
	HostUserID         uint                           `gorm:"not null"`
	Status             RoomStatus                     `gorm:"size:20;not null;default:WAITING"`
	Config             datatypes.JSONType[RoomConfig] `gorm:"type:jsonb;not null"`
	CurrentSpeakerSide *Side                          `gorm:"size:20"`
	CurrentSpeakerSeat *int
	TimerState         *TimerState `gorm:"size:20"`
	TurnDeadline       *time.Time
	ReadingEndsAt      *time.Time
	WinnerSide         *Side   `gorm:"size:20"`
	VerdictText        *string `gorm:"type:text"`
	JudgmentRetries    int     `gorm:"not null;default:0"`
}

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "WAITING"
	RoomStatusActive   RoomStatus = "ACTIVE"
	RoomStatusFinished RoomStatus = "FINISHED"
)

// Side 正方 / 反方 / 中立
type Side string

const (
	SidePro     Side = "PRO"
	SideContra  Side = "CONTRA"
	SideNeutral Side = "NEUTRAL"
	// 只用在判決結果
	SideDraw Side = "DRAW"
)

// Debating 只有正反兩方可以發言與投票
func (s Side) Debating() bool {
	return s == SidePro || s == SideContra
}

// Valid 判斷是否為已知的陣營
func (s Side) Valid() bool {
	return s.Debating() || s == SideNeutral
}

// TimerState ACTIVE 期間的計時子狀態
type TimerState string

const (
	TimerReading      TimerState = "READING"
	TimerWaitingInput TimerState = "WAITING_INPUT"
	TimerSpeaking     TimerState = "SPEAKING"
)

// Speaker 目前發言的席位，Seat 同時是回合數
type Speaker struct {
	Side Side `json:"side"`
	Seat int  `json:"seat"`
}

// Round 回合數就是發言席位編號
func (s Speaker) Round() int {
	return s.Seat
}

// RoomConfig 回傳房間設定
func (r *Room) RoomConfig() RoomConfig {
	return r.Config.Data()
}

// SetRoomConfig 設定房間設定
func (r *Room) SetRoomConfig(c RoomConfig) {
	r.Config = datatypes.NewJSONType(c)
}

// HasVerdict 判決是否已寫入
func (r *Room) HasVerdict() bool {
	return r.VerdictText != nil
}
