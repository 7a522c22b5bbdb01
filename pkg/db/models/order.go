package models

import "time"

// Order records a completed checkout. OrderID carries the storefront format
// SOUV-<unix-ms>-<6 digits> and doubles as the idempotency scope for point
// crediting.
type Order struct {
	OrderID       string          `gorm:"column:order_id;primaryKey"`
	UID           string          `gorm:"column:uid;not null;index:orders_uid_idx"`
	SubtotalCents int             `gorm:"column:subtotal_cents;not null"`
	DeliveryCents int             `gorm:"column:delivery_cents;not null"`
	TotalCents    int             `gorm:"column:total_cents;not null"`
	PointsEarned  int             `gorm:"column:points_earned;not null;default:0"`
	PlacedAt      time.Time       `gorm:"column:placed_at;not null"`
	LineItems     []OrderLineItem `gorm:"foreignKey:OrderID;references:OrderID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
