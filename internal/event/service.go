package event

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/00anuyh/souvenir-backend/internal/rewards"
	"github.com/00anuyh/souvenir-backend/pkg/config"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
)

const prizeCouponTitle = "Prize draw coupon"

type tokenGate interface {
	HasValid(ctx context.Context, uid string) (bool, error)
	Consume(ctx context.Context, uid string) error
}

type rewardsLedger interface {
	Get(ctx context.Context, uid string) (rewards.Balance, error)
	AddGifts(ctx context.Context, uid string, n int) (rewards.Balance, error)
	IssueCoupon(ctx context.Context, uid string, grant rewards.CouponGrant) (rewards.Balance, error)
}

type drawRecorder interface {
	IncPrizeDraw(won bool)
}

// DrawResult reports a single prize draw outcome.
type DrawResult struct {
	Won     bool            `json:"won"`
	Balance rewards.Balance `json:"balance"`
}

// Service gates the lottery-style promotional draw behind a valid purchase
// token.
type Service interface {
	Eligible(ctx context.Context, uid string) (bool, error)
	Draw(ctx context.Context, uid string) (DrawResult, error)
}

type service struct {
	tokens  tokenGate
	ledger  rewardsLedger
	metrics drawRecorder
	winRate float64
	rng     func() float64
}

// NewService wires the draw service. Metrics are optional.
func NewService(tokens tokenGate, ledger rewardsLedger, metrics drawRecorder, cfg config.EventConfig) (Service, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token gate required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("rewards ledger required")
	}
	if cfg.WinRate < 0 || cfg.WinRate > 1 {
		return nil, fmt.Errorf("win rate must be within [0,1], got %v", cfg.WinRate)
	}
	return &service{
		tokens:  tokens,
		ledger:  ledger,
		metrics: metrics,
		winRate: cfg.WinRate,
		rng:     rand.Float64,
	}, nil
}

// Eligible reports whether the user currently holds an unexpired purchase
// token. Checking never consumes it.
func (s *service) Eligible(ctx context.Context, uid string) (bool, error) {
	if strings.TrimSpace(uid) == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}
	return s.tokens.HasValid(ctx, uid)
}

// Draw consumes the purchase token and rolls the prize. A missing or expired
// token blocks the draw before any reward mutation happens. One purchase
// yields at most one attempt.
func (s *service) Draw(ctx context.Context, uid string) (DrawResult, error) {
	if strings.TrimSpace(uid) == "" {
		return DrawResult{}, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	valid, err := s.tokens.HasValid(ctx, uid)
	if err != nil {
		return DrawResult{}, err
	}
	if !valid {
		return DrawResult{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no valid recent purchase")
	}

	// consume on the first attempt, win or lose
	if err := s.tokens.Consume(ctx, uid); err != nil {
		return DrawResult{}, err
	}

	won := s.rng() < s.winRate
	result := DrawResult{Won: won}
	if won {
		if _, err := s.ledger.AddGifts(ctx, uid, 1); err != nil {
			return DrawResult{}, err
		}
		balance, err := s.ledger.IssueCoupon(ctx, uid, rewards.CouponGrant{Title: prizeCouponTitle})
		if err != nil {
			return DrawResult{}, err
		}
		result.Balance = balance
	} else {
		balance, err := s.ledger.Get(ctx, uid)
		if err != nil {
			return DrawResult{}, err
		}
		result.Balance = balance
	}

	if s.metrics != nil {
		s.metrics.IncPrizeDraw(won)
	}
	return result, nil
}
