package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
)

// Repository manages persistence for orders and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Save(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, uid, orderID string) (*models.Order, error)
	ListByUID(ctx context.Context, uid string) ([]models.Order, error)
	DeleteAllByUID(ctx context.Context, uid string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an orders repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Save writes an order, replacing an existing record (and its line items)
// that carries the same order id.
func (r *repository) Save(ctx context.Context, order *models.Order) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("order_id = ?", order.OrderID).
		Delete(&models.OrderLineItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", order.OrderID).
		Delete(&models.Order{}).Error; err != nil {
		return err
	}

	for i := range order.LineItems {
		order.LineItems[i].OrderID = order.OrderID
		if order.LineItems[i].ID == uuid.Nil {
			order.LineItems[i].ID = uuid.New()
		}
	}
	return db.Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, uid, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("uid = ? AND order_id = ?", uid, orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUID returns the user's orders newest-first.
func (r *repository) ListByUID(ctx context.Context, uid string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("uid = ?", uid).
		Order("placed_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) DeleteAllByUID(ctx context.Context, uid string) error {
	sub := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_id").
		Where("uid = ?", uid)
	if err := r.db.WithContext(ctx).
		Where("order_id IN (?)", sub).
		Delete(&models.OrderLineItem{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("uid = ?", uid).Delete(&models.Order{}).Error
}
