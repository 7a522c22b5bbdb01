package rewards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/00anuyh/souvenir-backend/pkg/errors"
)

// PurchaseToken proves a recent completed order and gates the prize draw.
type PurchaseToken struct {
	OrderID     string    `json:"order_id,omitempty"`
	PurchasedAt time.Time `json:"purchased_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type tokenKeyer interface {
	PurchaseTokenKey(uid string) string
}

// TokenManager issues, checks, and consumes per-user purchase tokens.
type TokenManager struct {
	store tokenStore
	keyer tokenKeyer
	ttl   time.Duration
	now   func() time.Time
}

type tokenBackend interface {
	tokenStore
	tokenKeyer
}

// NewTokenManager wires a token manager against the provided store.
func NewTokenManager(backend tokenBackend, ttl time.Duration) (*TokenManager, error) {
	if backend == nil {
		return nil, fmt.Errorf("token store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &TokenManager{
		store: backend,
		keyer: backend,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Mark issues a fresh token for the user, replacing any previous one. The
// token expires after the configured TTL.
func (m *TokenManager) Mark(ctx context.Context, uid, orderID string) (PurchaseToken, error) {
	if strings.TrimSpace(uid) == "" {
		return PurchaseToken{}, pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}

	now := m.now().UTC()
	token := PurchaseToken{
		OrderID:     orderID,
		PurchasedAt: now,
		ExpiresAt:   now.Add(m.ttl),
	}
	payload, err := json.Marshal(token)
	if err != nil {
		return PurchaseToken{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode purchase token")
	}
	if err := m.store.Set(ctx, m.keyer.PurchaseTokenKey(uid), string(payload), m.ttl); err != nil {
		return PurchaseToken{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store purchase token")
	}
	return token, nil
}

// HasValid reports whether the user holds an unexpired token. Checking never
// consumes the token.
func (m *TokenManager) HasValid(ctx context.Context, uid string) (bool, error) {
	token, ok, err := m.peek(ctx, uid)
	if err != nil || !ok {
		return false, err
	}
	return m.now().UTC().Before(token.ExpiresAt), nil
}

// Consume deletes the user's token regardless of its state. Once consumed no
// transition back to valid exists without a new purchase.
func (m *TokenManager) Consume(ctx context.Context, uid string) error {
	if strings.TrimSpace(uid) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "uid is required")
	}
	if err := m.store.Del(ctx, m.keyer.PurchaseTokenKey(uid)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume purchase token")
	}
	return nil
}

func (m *TokenManager) peek(ctx context.Context, uid string) (PurchaseToken, bool, error) {
	if strings.TrimSpace(uid) == "" {
		return PurchaseToken{}, false, nil
	}
	raw, err := m.store.Get(ctx, m.keyer.PurchaseTokenKey(uid))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return PurchaseToken{}, false, nil
		}
		return PurchaseToken{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase token")
	}
	var token PurchaseToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		// corrupted token reads as absent
		return PurchaseToken{}, false, nil
	}
	return token, true, nil
}
