package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine persists one mergeable line of a user's cart. At most one line
// exists per (owner, merge key); same-key adds fold into Qty instead.
type CartLine struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        string     `gorm:"column:owner_id;not null;index:cart_lines_owner_idx;uniqueIndex:cart_lines_owner_merge_key"`
	MergeKey       string     `gorm:"column:merge_key;not null;uniqueIndex:cart_lines_owner_merge_key"`
	ProductID      *string    `gorm:"column:product_id"`
	Slug           *string    `gorm:"column:slug"`
	Name           string     `gorm:"column:name;not null"`
	PriceCents     int        `gorm:"column:price_cents;not null"`
	BasePriceCents int        `gorm:"column:base_price_cents;not null"`
	OptionID       *string    `gorm:"column:option_id"`
	OptionLabel    *string    `gorm:"column:option_label"`
	DeliveryCents  int        `gorm:"column:delivery_cents;not null;default:0"`
	Thumb          *string    `gorm:"column:thumb"`
	Qty            int        `gorm:"column:qty;not null;default:1"`
	AddedAt        time.Time  `gorm:"column:added_at;autoCreateTime"`
	PurchasedAt    *time.Time `gorm:"column:purchased_at"`
	LastOrderID    *string    `gorm:"column:last_order_id"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
