package rewards

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
)

const (
	welcomeCouponTitle = "Welcome coupon"
	couponCodePrefix   = "SOUV"
)

// CouponGrant describes a coupon being issued. A blank code gets generated.
type CouponGrant struct {
	Code  string
	Title string
}

// IssueCoupon inserts a coupon row and bumps the coupon counter in one
// transaction, returning the resulting balance.
func (s *service) IssueCoupon(ctx context.Context, uid string, grant CouponGrant) (Balance, error) {
	if strings.TrimSpace(uid) == "" {
		return Balance{}, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	var result Balance
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := loadOrInit(ctx, repo, uid)
		if err != nil {
			return err
		}
		row.Coupons = clampCounter(row.Coupons + 1)
		if err := saveErr(repo.Save(ctx, row)); err != nil {
			return err
		}
		if err := s.coupons.WithTx(tx).Insert(ctx, s.newCoupon(uid, grant)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue coupon")
		}
		result = coerce(row)
		return nil
	})
	if err != nil {
		return Balance{}, err
	}
	return result, nil
}

// ListCoupons returns the user's coupons newest-first. A blank uid reads as
// an empty list.
func (s *service) ListCoupons(ctx context.Context, uid string) ([]models.CouponItem, error) {
	if strings.TrimSpace(uid) == "" {
		return []models.CouponItem{}, nil
	}
	coupons, err := s.coupons.ListByUID(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	if coupons == nil {
		coupons = []models.CouponItem{}
	}
	return coupons, nil
}

// UseCoupon redeems one of the user's coupons. A coupon redeems at most
// once; expired coupons stay unredeemable.
func (s *service) UseCoupon(ctx context.Context, uid string, id uuid.UUID) (*models.CouponItem, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	var redeemed *models.CouponItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		coupons := s.coupons.WithTx(tx)
		coupon, err := coupons.FindByID(ctx, uid, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
		}

		now := s.now()
		if coupon.Used {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon already used")
		}
		if now.After(coupon.ValidTo) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon expired")
		}

		affected, err := coupons.MarkUsed(ctx, uid, id, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redeem coupon")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon already used")
		}

		repo := s.repo.WithTx(tx)
		row, err := loadOrInit(ctx, repo, uid)
		if err != nil {
			return err
		}
		row.Coupons = clampCounter(row.Coupons - 1)
		if err := saveErr(repo.Save(ctx, row)); err != nil {
			return err
		}

		coupon.Used = true
		coupon.UsedAt = &now
		redeemed = coupon
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

func (s *service) newCoupon(uid string, grant CouponGrant) *models.CouponItem {
	code := strings.TrimSpace(grant.Code)
	if code == "" {
		code = newCouponCode()
	}
	title := strings.TrimSpace(grant.Title)
	if title == "" {
		title = welcomeCouponTitle
	}
	issued := s.now()
	return &models.CouponItem{
		UID:       uid,
		Code:      code,
		Title:     title,
		ValidFrom: issued,
		ValidTo:   issued.Add(s.cfg.CouponValidity),
	}
}

func newCouponCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return couponCodePrefix + "-" + strings.ToUpper(raw[:8])
}
