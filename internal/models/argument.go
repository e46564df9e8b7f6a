package models

import (
	"strings"
	"time"
)

// Argument 逐字稿中的一段發言，寫入後不再修改
type Argument struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RoomID      uint      `gorm:"not null;index" json:"room_id"`
	UserID      uint      `gorm:"not null" json:"user_id"`
	Username    string    `gorm:"size:64;not null" json:"username"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Side        Side      `gorm:"size:20;not null" json:"side"`
	RoundNumber int       `gorm:"not null" json:"round_number"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	FallacyTags []FallacyTag `gorm:"foreignKey:ArgumentID" json:"fallacy_tags,omitempty"`
}

// WordCount 以空白切字
func (a *Argument) WordCount() int {
	return len(strings.Fields(a.Content))
}
