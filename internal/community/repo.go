package community

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	"github.com/00anuyh/souvenir-backend/pkg/pagination"
)

// Repository provides persistence for community posts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, post *models.CommunityPost) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error)
	ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityPost, error)
	ListByAuthor(ctx context.Context, uid string) ([]models.CommunityPost, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddLike(ctx context.Context, id uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a community post repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, post *models.CommunityPost) error {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CommunityPost, error) {
	var post models.CommunityPost
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPage walks the board newest-first. The cursor marks the last row of the
// previous page; limit should include the lookahead row.
func (r *repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.CommunityPost, error) {
	query := r.db.WithContext(ctx).Model(&models.CommunityPost{})
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var posts []models.CommunityPost
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) ListByAuthor(ctx context.Context, uid string) ([]models.CommunityPost, error) {
	var posts []models.CommunityPost
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.CommunityPost{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AddLike bumps the post's like counter by one.
func (r *repository) AddLike(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CommunityPost{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + 1"))
	return res.RowsAffected, res.Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CommunityPost{})
	return res.RowsAffected, res.Error
}
