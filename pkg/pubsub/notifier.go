package pubsub

import (
	"context"
	"encoding/json"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

const defaultPublishTimeout = 10 * time.Second

// Notifier publishes cart and order change notifications. Publishing is
// best effort: failures are logged and never surfaced to the caller.
type Notifier struct {
	cart   *pubsub.Publisher
	orders *pubsub.Publisher
	logg   *logger.Logger
}

type changeEvent struct {
	UID        string    `json:"uid"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotifier builds a Notifier from the client's configured topics. A nil
// client yields a no-op notifier.
func NewNotifier(c *Client, logg *logger.Logger) *Notifier {
	n := &Notifier{logg: logg}
	if c != nil {
		n.cart = c.CartPublisher()
		n.orders = c.OrdersPublisher()
	}
	return n
}

// CartChanged announces that a user's cart contents changed.
func (n *Notifier) CartChanged(ctx context.Context, uid string) {
	n.publish(ctx, n.cart, changeEvent{UID: uid, Kind: "cart.updated", OccurredAt: time.Now().UTC()})
}

// OrdersChanged announces that a user's order history changed.
func (n *Notifier) OrdersChanged(ctx context.Context, uid string) {
	n.publish(ctx, n.orders, changeEvent{UID: uid, Kind: "orders.updated", OccurredAt: time.Now().UTC()})
}

func (n *Notifier) publish(ctx context.Context, pub *pubsub.Publisher, event changeEvent) {
	if n == nil || pub == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.warn(ctx, err, event)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultPublishTimeout)
	defer cancel()

	result := pub.Publish(publishCtx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"kind": event.Kind,
			"uid":  event.UID,
		},
	})
	if _, err := result.Get(publishCtx); err != nil {
		n.warn(ctx, err, event)
	}
}

func (n *Notifier) warn(ctx context.Context, err error, event changeEvent) {
	if n.logg == nil {
		return
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"kind":  event.Kind,
		"uid":   event.UID,
		"error": err.Error(),
	})
	n.logg.Warn(ctx, "publishing change notification failed")
}
