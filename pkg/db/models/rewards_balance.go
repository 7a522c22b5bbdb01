package models

import "time"

// RewardsBalance tracks the per-user loyalty counters. Counters never go
// negative; a missing row reads as all zeros.
type RewardsBalance struct {
	UID                string    `gorm:"column:uid;primaryKey"`
	Points             int       `gorm:"column:points;not null;default:0"`
	Coupons            int       `gorm:"column:coupons;not null;default:0"`
	Gifts              int       `gorm:"column:gifts;not null;default:0"`
	SignupBonusGranted bool      `gorm:"column:signup_bonus_granted;not null;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
