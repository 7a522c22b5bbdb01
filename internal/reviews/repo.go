package reviews

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// Repository provides persistence for product reviews.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, productKey, id string) (*models.Review, error)
	ListByProduct(ctx context.Context, productKey string) ([]models.Review, error)
	UpdateContent(ctx context.Context, productKey, id string, updates map[string]any) error
	DeleteByID(ctx context.Context, productKey, id string) (int64, error)
	DeleteAllByProduct(ctx context.Context, productKey string) error
	TrimToLimit(ctx context.Context, productKey string, limit int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a review repository backed by the given gorm handle.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repository) FindByID(ctx context.Context, productKey, id string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("product_key = ? AND id = ?", productKey, id).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repository) ListByProduct(ctx context.Context, productKey string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_key = ?", productKey).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repository) UpdateContent(ctx context.Context, productKey, id string, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_key = ? AND id = ?", productKey, id).
		Updates(updates).Error
}

func (r *repository) DeleteByID(ctx context.Context, productKey, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_key = ? AND id = ?", productKey, id).
		Delete(&models.Review{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteAllByProduct(ctx context.Context, productKey string) error {
	return r.db.WithContext(ctx).
		Where("product_key = ?", productKey).
		Delete(&models.Review{}).Error
}

// TrimToLimit drops the oldest reviews for a product until at most limit
// remain.
func (r *repository) TrimToLimit(ctx context.Context, productKey string, limit int) (int64, error) {
	if limit < 0 {
		limit = 0
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_key = ?", productKey).
		Order("created_at DESC, id DESC").
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) <= limit {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("product_key = ? AND id IN ?", productKey, ids[limit:]).
		Delete(&models.Review{})
	return res.RowsAffected, res.Error
}
