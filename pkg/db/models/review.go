package models

import "time"

// Review is a per-product customer review. Each product keeps at most a fixed
// number of reviews; the oldest are dropped on overflow.
type Review struct {
	ID         string    `gorm:"column:id;primaryKey"`
	ProductKey string    `gorm:"column:product_key;not null;index:reviews_product_key_idx"`
	AuthorID   string    `gorm:"column:author_id;not null"`
	AuthorName string    `gorm:"column:author_name;not null"`
	Rating     int       `gorm:"column:rating;not null;default:0"`
	Excerpt    string    `gorm:"column:excerpt;not null"`
	Thumb      *string   `gorm:"column:thumb"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
