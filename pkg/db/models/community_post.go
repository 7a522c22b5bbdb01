package models

import (
	"time"

	"github.com/google/uuid"
)

// CommunityPost is a shopper-authored post on the community board.
type CommunityPost struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UID       string    `gorm:"column:uid;not null;index:community_posts_uid_idx"`
	Title     string    `gorm:"column:title;not null"`
	Body      string    `gorm:"column:body;not null"`
	PhotoURL  *string   `gorm:"column:photo_url"`
	Likes     int       `gorm:"column:likes;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
