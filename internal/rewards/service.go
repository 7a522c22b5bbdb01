package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/redis"
)

const creditScope = "pointsCredited"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Balance is the externally visible rewards counter set.
type Balance struct {
	Points  int `json:"points"`
	Coupons int `json:"coupons"`
	Gifts   int `json:"gifts"`
}

// Service exposes the per-user rewards ledger.
type Service interface {
	Get(ctx context.Context, uid string) (Balance, error)
	Set(ctx context.Context, uid string, next Balance) (Balance, error)
	AddPoints(ctx context.Context, uid string, n int) (Balance, error)
	AddCoupons(ctx context.Context, uid string, n int) (Balance, error)
	AddGifts(ctx context.Context, uid string, n int) (Balance, error)
	GrantSignupBonusOnce(ctx context.Context, uid string) (bool, error)
	CreditOrderPoints(ctx context.Context, uid, orderID string, points int) (bool, error)
	IssueCoupon(ctx context.Context, uid string, grant CouponGrant) (Balance, error)
	ListCoupons(ctx context.Context, uid string) ([]models.CouponItem, error)
	UseCoupon(ctx context.Context, uid string, id uuid.UUID) (*models.CouponItem, error)
}

type service struct {
	repo        Repository
	coupons     CouponRepository
	tx          txRunner
	idempotency redis.IdempotencyStore
	cfg         config.RewardsConfig
	now         func() time.Time
}

// NewService builds the rewards service. The idempotency store guards
// per-order point crediting against replays.
func NewService(repo Repository, coupons CouponRepository, tx txRunner, idempotency redis.IdempotencyStore, cfg config.RewardsConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	return &service{
		repo:        repo,
		coupons:     coupons,
		tx:          tx,
		idempotency: idempotency,
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

// Get reads the user's balance. A blank uid or missing row reads as all
// zeros; counters are never negative.
func (s *service) Get(ctx context.Context, uid string) (Balance, error) {
	if strings.TrimSpace(uid) == "" {
		return Balance{}, nil
	}
	row, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Balance{}, nil
		}
		return Balance{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rewards balance")
	}
	return coerce(row), nil
}

// Set replaces the user's balance wholesale. A blank uid performs no write
// and reads as zeros.
func (s *service) Set(ctx context.Context, uid string, next Balance) (Balance, error) {
	if strings.TrimSpace(uid) == "" {
		return Balance{}, nil
	}

	result := clampBalance(next)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := loadOrInit(ctx, repo, uid)
		if err != nil {
			return err
		}
		row.Points = result.Points
		row.Coupons = result.Coupons
		row.Gifts = result.Gifts
		return saveErr(repo.Save(ctx, row))
	})
	if err != nil {
		return Balance{}, err
	}
	return result, nil
}

// AddPoints increments the points counter; the result never drops below zero.
func (s *service) AddPoints(ctx context.Context, uid string, n int) (Balance, error) {
	return s.add(ctx, uid, func(row *models.RewardsBalance) {
		row.Points = clampCounter(row.Points + n)
	})
}

// AddCoupons increments the coupon counter.
func (s *service) AddCoupons(ctx context.Context, uid string, n int) (Balance, error) {
	return s.add(ctx, uid, func(row *models.RewardsBalance) {
		row.Coupons = clampCounter(row.Coupons + n)
	})
}

// AddGifts increments the gift counter.
func (s *service) AddGifts(ctx context.Context, uid string, n int) (Balance, error) {
	return s.add(ctx, uid, func(row *models.RewardsBalance) {
		row.Gifts = clampCounter(row.Gifts + n)
	})
}

// GrantSignupBonusOnce awards the fixed signup bonus exactly once per user
// and reports whether the grant happened on this call.
func (s *service) GrantSignupBonusOnce(ctx context.Context, uid string) (bool, error) {
	if strings.TrimSpace(uid) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	granted := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := loadOrInit(ctx, repo, uid)
		if err != nil {
			return err
		}
		if row.SignupBonusGranted {
			return nil
		}
		row.Points = clampCounter(row.Points + s.cfg.SignupBonusPoints)
		row.Coupons = clampCounter(row.Coupons + s.cfg.SignupBonusCoupons)
		row.SignupBonusGranted = true
		if err := saveErr(repo.Save(ctx, row)); err != nil {
			return err
		}
		coupons := s.coupons.WithTx(tx)
		for i := 0; i < s.cfg.SignupBonusCoupons; i++ {
			if err := coupons.Insert(ctx, s.newCoupon(uid, CouponGrant{Title: welcomeCouponTitle})); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue welcome coupon")
			}
		}
		granted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return granted, nil
}

// CreditOrderPoints credits points for an order at most once, guarded by a
// replay marker keyed on the order id. Reports whether this call credited.
func (s *service) CreditOrderPoints(ctx context.Context, uid, orderID string, points int) (bool, error) {
	if strings.TrimSpace(uid) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}
	if strings.TrimSpace(orderID) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if points <= 0 {
		return false, nil
	}

	key := s.idempotency.IdempotencyKey(creditScope, orderID)
	set, err := s.idempotency.SetNX(ctx, key, "1", s.cfg.CreditMarkerTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order points credited")
	}
	if !set {
		return false, nil
	}

	if _, err := s.AddPoints(ctx, uid, points); err != nil {
		// release the marker so a retry can credit
		_ = s.idempotency.Del(ctx, key)
		return false, err
	}
	return true, nil
}

func (s *service) add(ctx context.Context, uid string, mutate func(*models.RewardsBalance)) (Balance, error) {
	if strings.TrimSpace(uid) == "" {
		return Balance{}, nil
	}

	var result Balance
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := loadOrInit(ctx, repo, uid)
		if err != nil {
			return err
		}
		mutate(row)
		if err := saveErr(repo.Save(ctx, row)); err != nil {
			return err
		}
		result = coerce(row)
		return nil
	})
	if err != nil {
		return Balance{}, err
	}
	return result, nil
}

func loadOrInit(ctx context.Context, repo Repository, uid string) (*models.RewardsBalance, error) {
	row, err := repo.FindByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.RewardsBalance{UID: uid}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rewards balance")
	}
	return row, nil
}

func saveErr(err error) error {
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rewards balance")
	}
	return nil
}

func coerce(row *models.RewardsBalance) Balance {
	if row == nil {
		return Balance{}
	}
	return Balance{
		Points:  clampCounter(row.Points),
		Coupons: clampCounter(row.Coupons),
		Gifts:   clampCounter(row.Gifts),
	}
}

func clampBalance(b Balance) Balance {
	return Balance{
		Points:  clampCounter(b.Points),
		Coupons: clampCounter(b.Coupons),
		Gifts:   clampCounter(b.Gifts),
	}
}

func clampCounter(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
