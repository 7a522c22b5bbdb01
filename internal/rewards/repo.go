package rewards

import (
	"context"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// Repository manages persistence for per-user rewards balances.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUID(ctx context.Context, uid string) (*models.RewardsBalance, error)
	Save(ctx context.Context, balance *models.RewardsBalance) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a rewards repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUID(ctx context.Context, uid string) (*models.RewardsBalance, error) {
	var balance models.RewardsBalance
	if err := r.db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) Save(ctx context.Context, balance *models.RewardsBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}
