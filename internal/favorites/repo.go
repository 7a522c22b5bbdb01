package favorites

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// Repository provides persistence for favorite items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUIDAndSlug(ctx context.Context, uid, slug string) (*models.FavoriteItem, error)
	Create(ctx context.Context, item *models.FavoriteItem) error
	DeleteByUIDAndSlug(ctx context.Context, uid, slug string) (int64, error)
	ListByUID(ctx context.Context, uid string) ([]models.FavoriteItem, error)
	DeleteAllByUID(ctx context.Context, uid string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a favorites repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	return &repository{db: db}, nil
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) FindByUIDAndSlug(ctx context.Context, uid, slug string) (*models.FavoriteItem, error) {
	var item models.FavoriteItem
	err := r.db.WithContext(ctx).
		Where("uid = ? AND slug = ?", uid, slug).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) Create(ctx context.Context, item *models.FavoriteItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) DeleteByUIDAndSlug(ctx context.Context, uid, slug string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("uid = ? AND slug = ?", uid, slug).
		Delete(&models.FavoriteItem{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByUID(ctx context.Context, uid string) ([]models.FavoriteItem, error) {
	var items []models.FavoriteItem
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC, slug ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) DeleteAllByUID(ctx context.Context, uid string) error {
	return r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Delete(&models.FavoriteItem{}).Error
}
