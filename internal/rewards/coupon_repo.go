package rewards

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// CouponRepository manages persistence for issued coupon rows.
type CouponRepository interface {
	WithTx(tx *gorm.DB) CouponRepository
	Insert(ctx context.Context, coupon *models.CouponItem) error
	ListByUID(ctx context.Context, uid string) ([]models.CouponItem, error)
	FindByID(ctx context.Context, uid string, id uuid.UUID) (*models.CouponItem, error)
	MarkUsed(ctx context.Context, uid string, id uuid.UUID, usedAt time.Time) (int64, error)
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository returns a coupon repository bound to the provided
// database.
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) WithTx(tx *gorm.DB) CouponRepository {
	if tx == nil {
		return r
	}
	return &couponRepository{db: tx}
}

func (r *couponRepository) Insert(ctx context.Context, coupon *models.CouponItem) error {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepository) ListByUID(ctx context.Context, uid string) ([]models.CouponItem, error) {
	var coupons []models.CouponItem
	err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		Order("created_at DESC, id DESC").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *couponRepository) FindByID(ctx context.Context, uid string, id uuid.UUID) (*models.CouponItem, error) {
	var coupon models.CouponItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND uid = ?", id, uid).
		First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// MarkUsed flips the used flag. The unused guard makes redemption
// single-shot even under concurrent requests.
func (r *couponRepository) MarkUsed(ctx context.Context, uid string, id uuid.UUID, usedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CouponItem{}).
		Where("id = ? AND uid = ? AND used = ?", id, uid, false).
		Updates(map[string]any{"used": true, "used_at": usedAt})
	return res.RowsAffected, res.Error
}
