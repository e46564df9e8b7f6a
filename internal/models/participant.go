package models

import "time"

// ParticipantRole 參與者在房間內的身分
type ParticipantRole string

const (
	RoleHost      ParticipantRole = "HOST"
	RoleDebater   ParticipantRole = "DEBATER"
	RoleSpectator ParticipantRole = "SPECTATOR"
)

// Participant 房間與使用者的關聯，每個房間每位使用者只有一筆
type Participant struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	RoomID     uint            `gorm:"not null;uniqueIndex:participants_room_user" json:"room_id"`
	UserID     uint            `gorm:"not null;uniqueIndex:participants_room_user" json:"user_id"`
	Username   string          `gorm:"size:64;not null" json:"username"`
	Role       ParticipantRole `gorm:"size:20;not null" json:"role"`
	Side       Side            `gorm:"size:20;not null;default:NEUTRAL" json:"side"`
	SeatNumber int             `gorm:"not null;default:0" json:"seat_number"`
	JoinedAt   time.Time       `gorm:"autoCreateTime" json:"joined_at"`
}

// IsDebater 已入座的辯手
func (p *Participant) IsDebater() bool {
	return p.Role == RoleDebater && p.Side.Debating()
}

// Seated 是否坐在指定席位
func (p *Participant) Seated(side Side, seat int) bool {
	return p.Side == side && p.SeatNumber == seat
}
