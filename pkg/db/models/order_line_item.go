package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem snapshots a cart line at the moment an order was placed.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        string    `gorm:"column:order_id;not null;index:order_line_items_order_idx"`
	MergeKey       string    `gorm:"column:merge_key;not null"`
	ProductID      *string   `gorm:"column:product_id"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	DeliveryCents  int       `gorm:"column:delivery_cents;not null;default:0"`
	Qty            int       `gorm:"column:qty;not null"`
	OptionLabel    *string   `gorm:"column:option_label"`
	Thumb          *string   `gorm:"column:thumb"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
