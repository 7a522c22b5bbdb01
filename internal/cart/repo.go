package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// Repository manages persistence for cart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByOwnerAndKey(ctx context.Context, ownerID, key string) (*models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) error
	UpdateQty(ctx context.Context, ownerID, key string, qty int) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.CartLine, error)
	DeleteByKeys(ctx context.Context, ownerID string, keys []string) error
	DeleteAllByOwner(ctx context.Context, ownerID string) error
	TagPurchased(ctx context.Context, ownerID string, keys []string, orderID string, purchasedAt time.Time) error
	SumQtyByOwner(ctx context.Context, ownerID string) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a cart repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByOwnerAndKey(ctx context.Context, ownerID, key string) (*models.CartLine, error) {
	var line models.CartLine
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND merge_key = ?", ownerID, key).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) Create(ctx context.Context, line *models.CartLine) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateQty(ctx context.Context, ownerID, key string, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("owner_id = ? AND merge_key = ?", ownerID, key).
		Update("qty", qty)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByOwner(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	var lines []models.CartLine
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("added_at ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) DeleteByKeys(ctx context.Context, ownerID string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("owner_id = ? AND merge_key IN ?", ownerID, keys).
		Delete(&models.CartLine{}).Error
}

func (r *repository) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&models.CartLine{}).Error
}

func (r *repository) TagPurchased(ctx context.Context, ownerID string, keys []string, orderID string, purchasedAt time.Time) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("owner_id = ? AND merge_key IN ?", ownerID, keys).
		Updates(map[string]any{
			"purchased_at":  purchasedAt,
			"last_order_id": orderID,
		}).Error
}

func (r *repository) SumQtyByOwner(ctx context.Context, ownerID string) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("owner_id = ?", ownerID).
		Select("SUM(qty)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
