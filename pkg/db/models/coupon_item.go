package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponItem is one issued coupon. The rewards balance tracks the unused
// count; rows carry the code, validity window, and redemption state.
type CouponItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UID       string     `gorm:"column:uid;not null;index:coupon_items_uid_idx"`
	Code      string     `gorm:"column:code;not null"`
	Title     string     `gorm:"column:title;not null"`
	ValidFrom time.Time  `gorm:"column:valid_from;not null"`
	ValidTo   time.Time  `gorm:"column:valid_to;not null"`
	Used      bool       `gorm:"column:used;not null;default:false"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
