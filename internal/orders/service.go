package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/00anuyh/souvenir-backend/internal/rewards"
	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/db/models"
	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccess interface {
	Get(ctx context.Context, ownerID string) ([]models.CartLine, error)
	TagPurchased(ctx context.Context, ownerID string, keys []string, orderID string, purchasedAt *time.Time) error
	RemoveMany(ctx context.Context, ownerID string, keys []string) ([]models.CartLine, error)
}

type pointsCreditor interface {
	CreditOrderPoints(ctx context.Context, uid, orderID string, points int) (bool, error)
}

type purchaseMarker interface {
	Mark(ctx context.Context, uid, orderID string) (rewards.PurchaseToken, error)
}

type changeNotifier interface {
	OrdersChanged(ctx context.Context, uid string)
}

type orderRecorder interface {
	IncOrderPlaced()
	ObserveOrderDuration(d time.Duration)
	AddPointsEarned(points int)
}

// PlaceOrderInput selects which cart lines to purchase. Empty Keys means the
// whole cart.
type PlaceOrderInput struct {
	Keys []string
}

// Service exposes checkout and order history operations.
type Service interface {
	Place(ctx context.Context, uid string, input PlaceOrderInput) (*models.Order, error)
	List(ctx context.Context, uid string) ([]models.Order, error)
	Get(ctx context.Context, uid, orderID string) (*models.Order, error)
	Clear(ctx context.Context, uid string) error
}

// ServiceParams groups dependencies for the orders service. Notifier and
// metrics are optional.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Cart    cartAccess
	Rewards pointsCreditor
	Tokens  purchaseMarker
	Notify  changeNotifier
	Metrics orderRecorder
	Logger  *logger.Logger
	Config  config.RewardsConfig
}

type service struct {
	repo    Repository
	tx      txRunner
	cart    cartAccess
	rewards pointsCreditor
	tokens  purchaseMarker
	notify  changeNotifier
	metrics orderRecorder
	logg    *logger.Logger
	cfg     config.RewardsConfig
	newID   func() string
	now     func() time.Time
}

// NewService builds the orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if params.Rewards == nil {
		return nil, fmt.Errorf("points creditor required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("purchase marker required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		cart:    params.Cart,
		rewards: params.Rewards,
		tokens:  params.Tokens,
		notify:  params.Notify,
		metrics: params.Metrics,
		logg:    params.Logger,
		cfg:     params.Config,
		newID:   NewOrderID,
		now:     time.Now,
	}, nil
}

// Place turns the selected cart lines into an order: persists the snapshot,
// credits earned points once, issues the purchase token, and stamps and
// removes the purchased lines.
func (s *service) Place(ctx context.Context, uid string, input PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	started := s.now()
	lines, err := s.cart.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	selected := selectLines(lines, input.Keys)
	if len(selected) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart lines selected for checkout")
	}

	placedAt := s.now().UTC()
	order := &models.Order{
		OrderID:  s.newID(),
		UID:      uid,
		PlacedAt: placedAt,
	}
	keys := make([]string, 0, len(selected))
	for _, line := range selected {
		keys = append(keys, line.MergeKey)
		order.SubtotalCents += line.PriceCents * line.Qty
		order.DeliveryCents += line.DeliveryCents
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			OrderID:        order.OrderID,
			MergeKey:       line.MergeKey,
			ProductID:      line.ProductID,
			Name:           line.Name,
			UnitPriceCents: line.PriceCents,
			DeliveryCents:  line.DeliveryCents,
			Qty:            line.Qty,
			OptionLabel:    line.OptionLabel,
			Thumb:          line.Thumb,
		})
	}
	order.TotalCents = order.SubtotalCents + order.DeliveryCents
	order.PointsEarned = EarnedPoints(order.TotalCents, s.cfg.EarnRateBps)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithOrderID(s.logg.WithUserID(ctx, uid), order.OrderID)
	}

	if _, err := s.rewards.CreditOrderPoints(ctx, uid, order.OrderID, order.PointsEarned); err != nil {
		// the order is placed; crediting can be retried from the receipt view
		s.warn(logCtx, err, "crediting order points failed")
	}
	if _, err := s.tokens.Mark(ctx, uid, order.OrderID); err != nil {
		s.warn(logCtx, err, "issuing purchase token failed")
	}
	if err := s.cart.TagPurchased(ctx, uid, keys, order.OrderID, &placedAt); err != nil {
		s.warn(logCtx, err, "tagging purchased cart lines failed")
	}
	if _, err := s.cart.RemoveMany(ctx, uid, keys); err != nil {
		s.warn(logCtx, err, "removing purchased cart lines failed")
	}

	if s.notify != nil {
		s.notify.OrdersChanged(ctx, uid)
	}
	if s.metrics != nil {
		s.metrics.IncOrderPlaced()
		s.metrics.AddPointsEarned(order.PointsEarned)
		s.metrics.ObserveOrderDuration(s.now().Sub(started))
	}
	if s.logg != nil {
		s.logg.Info(logCtx, "order placed")
	}
	return order, nil
}

// List returns the user's order history newest-first.
func (s *service) List(ctx context.Context, uid string) ([]models.Order, error) {
	if strings.TrimSpace(uid) == "" {
		return []models.Order{}, nil
	}
	orders, err := s.repo.ListByUID(ctx, uid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Get loads a single order scoped to the user.
func (s *service) Get(ctx context.Context, uid, orderID string) (*models.Order, error) {
	if strings.TrimSpace(uid) == "" || strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uid and order id are required")
	}
	order, err := s.repo.FindByID(ctx, uid, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// Clear drops the user's order history.
func (s *service) Clear(ctx context.Context, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}
	if err := s.repo.DeleteAllByUID(ctx, uid); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear orders")
	}
	if s.notify != nil {
		s.notify.OrdersChanged(ctx, uid)
	}
	return nil
}

// EarnedPoints computes the reward points for an order total at the given
// earn rate in basis points, rounded down.
func EarnedPoints(totalCents, rateBps int) int {
	if totalCents <= 0 || rateBps <= 0 {
		return 0
	}
	points := decimal.NewFromInt(int64(totalCents)).
		Mul(decimal.NewFromInt(int64(rateBps))).
		Div(decimal.NewFromInt(10_000)).
		Floor()
	return int(points.IntPart())
}

func selectLines(lines []models.CartLine, keys []string) []models.CartLine {
	if len(keys) == 0 {
		return lines
	}
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	var out []models.CartLine
	for _, line := range lines {
		if _, ok := set[line.MergeKey]; ok {
			out = append(out, line)
		}
	}
	return out
}

func (s *service) warn(ctx context.Context, err error, msg string) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
