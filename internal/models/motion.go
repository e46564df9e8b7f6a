package models

import "gorm.io/gorm"

// Motion 辯題，房間建立時引用
type Motion struct {
	gorm.Model
	Topic       string `gorm:"type:text;not null" json:"topic"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`
}
