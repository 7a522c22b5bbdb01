package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db"
	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type changeNotifier interface {
	CartChanged(ctx context.Context, uid string)
}

// Service exposes cart operations for a single owner.
type Service interface {
	Get(ctx context.Context, ownerID string) ([]models.CartLine, error)
	Add(ctx context.Context, ownerID string, input LineInput, qty int) ([]models.CartLine, error)
	SetQty(ctx context.Context, ownerID, key string, qty int) ([]models.CartLine, error)
	RemoveByKey(ctx context.Context, ownerID, key string) ([]models.CartLine, error)
	RemoveMany(ctx context.Context, ownerID string, keys []string) ([]models.CartLine, error)
	Clear(ctx context.Context, ownerID string) error
	Count(ctx context.Context, ownerID string) (int, error)
	TagPurchased(ctx context.Context, ownerID string, keys []string, orderID string, purchasedAt *time.Time) error
}

type service struct {
	repo   Repository
	tx     txRunner
	notify changeNotifier
	logg   *logger.Logger
}

// NewService builds a cart service backed by the provided stack. The notifier
// is optional.
func NewService(repo Repository, tx txRunner, notify changeNotifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, notify: notify, logg: logg}, nil
}

// Get returns the owner's cart oldest-first. Storage failures degrade to an
// empty cart instead of surfacing an error.
func (s *service) Get(ctx context.Context, ownerID string) ([]models.CartLine, error) {
	if strings.TrimSpace(ownerID) == "" {
		return []models.CartLine{}, nil
	}
	lines, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart read failed, returning empty cart")
		}
		return []models.CartLine{}, nil
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	return lines, nil
}

// Add folds the item into an existing line when the merge key matches,
// otherwise appends a new line. Quantity is clamped to at least 1.
func (s *service) Add(ctx context.Context, ownerID string, input LineInput, qty int) ([]models.CartLine, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	key := MergeKey(input)
	addQty := qty
	if addQty < 1 {
		addQty = 1
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindByOwnerAndKey(ctx, ownerID, key)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		if existing != nil {
			next := existing.Qty + addQty
			if next < 1 {
				next = 1
			}
			if _, err := repo.UpdateQty(ctx, ownerID, key, next); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line qty")
			}
			return nil
		}

		line := &models.CartLine{
			OwnerID:        ownerID,
			MergeKey:       key,
			ProductID:      input.ID,
			Slug:           input.Slug,
			Name:           input.Name,
			PriceCents:     input.PriceCents,
			BasePriceCents: input.BasePrice(),
			OptionID:       input.OptionID,
			OptionLabel:    input.OptionLabel,
			DeliveryCents:  input.DeliveryCents,
			Thumb:          input.ThumbRef(),
			Qty:            addQty,
		}
		if err := repo.Create(ctx, line); err != nil {
			if db.IsUniqueViolation(err, "cart_lines_owner_merge_key") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, ownerID)
	return s.Get(ctx, ownerID)
}

// SetQty sets the quantity for the keyed line, clamped to at least 1. A
// missing line is ignored.
func (s *service) SetQty(ctx context.Context, ownerID, key string, qty int) ([]models.CartLine, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line key is required")
	}

	if qty < 1 {
		qty = 1
	}
	affected, err := s.repo.UpdateQty(ctx, ownerID, key, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line qty")
	}
	if affected > 0 {
		s.changed(ctx, ownerID)
	}
	return s.Get(ctx, ownerID)
}

// RemoveByKey drops the keyed line regardless of prior state.
func (s *service) RemoveByKey(ctx context.Context, ownerID, key string) ([]models.CartLine, error) {
	return s.RemoveMany(ctx, ownerID, []string{key})
}

// RemoveMany drops every line whose key is listed.
func (s *service) RemoveMany(ctx context.Context, ownerID string, keys []string) ([]models.CartLine, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if len(keys) == 0 {
		return s.Get(ctx, ownerID)
	}
	if err := s.repo.DeleteByKeys(ctx, ownerID, keys); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart lines")
	}
	s.changed(ctx, ownerID)
	return s.Get(ctx, ownerID)
}

// Clear empties the owner's cart.
func (s *service) Clear(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if err := s.repo.DeleteAllByOwner(ctx, ownerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.changed(ctx, ownerID)
	return nil
}

// Count returns the total quantity across the owner's lines.
func (s *service) Count(ctx context.Context, ownerID string) (int, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, nil
	}
	total, err := s.repo.SumQtyByOwner(ctx, ownerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart lines")
	}
	return total, nil
}

// TagPurchased stamps the listed lines with order completion metadata.
func (s *service) TagPurchased(ctx context.Context, ownerID string, keys []string, orderID string, purchasedAt *time.Time) error {
	if strings.TrimSpace(ownerID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if len(keys) == 0 {
		return nil
	}
	at := time.Now().UTC()
	if purchasedAt != nil {
		at = *purchasedAt
	}
	if err := s.repo.TagPurchased(ctx, ownerID, keys, orderID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "tag purchased cart lines")
	}
	s.changed(ctx, ownerID)
	return nil
}

func (s *service) changed(ctx context.Context, ownerID string) {
	if s.notify == nil {
		return
	}
	s.notify.CartChanged(ctx, ownerID)
}
