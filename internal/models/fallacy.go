package models

import "time"

// FallacyType 謬誤種類，只接受下列幾種
type FallacyType string

const (
	FallacyAdHominem           FallacyType = "ad_hominem"
	FallacyStrawman            FallacyType = "strawman"
	FallacyRedHerring          FallacyType = "red_herring"
	FallacySlipperySlope       FallacyType = "slippery_slope"
	FallacyFalseDichotomy      FallacyType = "false_dichotomy"
	FallacyHastyGeneralization FallacyType = "hasty_generalization"
	FallacyAppealToEmotion     FallacyType = "appeal_to_emotion"
	FallacyCircularReasoning   FallacyType = "circular_reasoning"
)

var fallacyLabels = map[FallacyType]string{
	FallacyAdHominem:           "Ad Hominem",
	FallacyStrawman:            "Strawman",
	FallacyRedHerring:          "Red Herring",
	FallacySlipperySlope:       "Slippery Slope",
	FallacyFalseDichotomy:      "False Dichotomy",
	FallacyHastyGeneralization: "Hasty Generalization",
	FallacyAppealToEmotion:     "Appeal to Emotion",
	FallacyCircularReasoning:   "Circular Reasoning",
}

func (f FallacyType) Valid() bool {
	_, ok := fallacyLabels[f]
	return ok
}

// Label 顯示用名稱
func (f FallacyType) Label() string {
	return fallacyLabels[f]
}

// FallacyTag 對某段發言的謬誤標記，只會新增
type FallacyTag struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	ArgumentID  uint        `gorm:"not null;index" json:"argument_id"`
	UserID      uint        `gorm:"not null" json:"user_id"`
	Username    string      `gorm:"size:64;not null" json:"username"`
	FallacyType FallacyType `gorm:"size:40;not null" json:"fallacy_type"`
	Description string      `gorm:"type:text" json:"description"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}
