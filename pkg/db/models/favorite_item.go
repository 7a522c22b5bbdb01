package models

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteItem links a user to a liked product slug.
type FavoriteItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UID       string    `gorm:"column:uid;not null;index:favorite_items_uid_idx;uniqueIndex:favorite_items_uid_slug_key"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex:favorite_items_uid_slug_key"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
