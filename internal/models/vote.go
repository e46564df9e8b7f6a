package models

import "time"

// RoundVote 每位使用者每回合一票，重投會覆蓋
type RoundVote struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RoomID      uint      `gorm:"not null" json:"room_id"`
	RoundNumber int       `gorm:"not null" json:"round_number"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	Side        Side      `gorm:"size:20;not null" json:"side"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VoteTally 單一回合的票數
type VoteTally struct {
	RoundNumber int `json:"round"`
	Pro         int `json:"pro_count"`
	Contra      int `json:"contra_count"`
}
