package models

import (
	"errors"
	"fmt"
	"time"
)

// Format 辯論賽制，只接受下列幾種
type Format string

const (
	FormatAsianParliamentary   Format = "Asian Parliamentary"
	FormatBritishParliamentary Format = "British Parliamentary"
	FormatDuel                 Format = "1 vs 1 (Duel)"
)

type formatSpec struct {
	// 每方的席位數，0 表示由 max_rounds 決定 (一對一)
	seats int
	roles map[Side][]string
}

var formats = map[Format]formatSpec{
	FormatAsianParliamentary: {
		seats: 3,
		roles: map[Side][]string{
			SidePro:    {"Prime Minister", "Deputy Prime Minister", "Government Whip"},
			SideContra: {"Leader of Opposition", "Deputy Leader of Opposition", "Opposition Whip"},
		},
	},
	FormatBritishParliamentary: {
		seats: 4,
		roles: map[Side][]string{
			SidePro:    {"Prime Minister", "Deputy Prime Minister", "Member of Government", "Government Whip"},
			SideContra: {"Leader of Opposition", "Deputy Leader of Opposition", "Member of Opposition", "Opposition Whip"},
		},
	},
	FormatDuel: {
		roles: map[Side][]string{
			SidePro:    {"The Proposition"},
			SideContra: {"The Opposition"},
		},
	},
}

// Formats 回傳所有支援的賽制
func Formats() []Format {
	return []Format{FormatAsianParliamentary, FormatBritishParliamentary, FormatDuel}
}

func (f Format) Valid() bool {
	_, ok := formats[f]
	return ok
}

// MaxRoundsLimit 一對一賽制回合上限
const MaxRoundsLimit = 20

var ErrInvalidConfig = errors.New("invalid room config")

// RoomConfig 房間設定，存在 rooms.config (jsonb)
type RoomConfig struct {
	Format Format `json:"format"`
	// 只對一對一賽制有意義
	MaxRounds int `json:"max_rounds"`
	// 0 代表不限時
	SpeechDurationSeconds int  `json:"speech_duration_seconds"`
	IsPublic              bool `json:"is_public"`
	AllowLateJoin         bool `json:"allow_late_join"`
}

// Validate 在建立房間時檢查設定，未知賽制直接拒絕
func (c RoomConfig) Validate() error {
	if !c.Format.Valid() {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	if c.Format == FormatDuel && (c.MaxRounds < 1 || c.MaxRounds > MaxRoundsLimit) {
		return fmt.Errorf("%w: max_rounds must be between 1 and %d", ErrInvalidConfig, MaxRoundsLimit)
	}
	if c.SpeechDurationSeconds < 0 {
		return fmt.Errorf("%w: speech_duration_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SpeechDuration 0 代表不限時
func (c RoomConfig) SpeechDuration() time.Duration {
	return time.Duration(c.SpeechDurationSeconds) * time.Second
}

// Unbounded 發言是否不限時
func (c RoomConfig) Unbounded() bool {
	return c.SpeechDurationSeconds == 0
}

// SlotCount 每一方的發言次數上限，也是回合數上限
func (c RoomConfig) SlotCount() int {
	spec := formats[c.Format]
	if spec.seats == 0 {
		return c.MaxRounds
	}
	return spec.seats
}

// SeatsPerSide 可以入座的席位數量
func (c RoomConfig) SeatsPerSide() int {
	if c.Format == FormatDuel {
		return 1
	}
	return c.SlotCount()
}

// SeatFor 找出輪到發言的實際席位；一對一賽制每回合都是 1 號席
func (c RoomConfig) SeatFor(sp Speaker) int {
	if c.Format == FormatDuel {
		return 1
	}
	return sp.Seat
}

// RoleTitle 席位的角色名稱
func (c RoomConfig) RoleTitle(side Side, seat int) string {
	roles := formats[c.Format].roles[side]
	if seat < 1 || seat > len(roles) {
		return ""
	}
	return roles[seat-1]
}
