package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records order placement and prize draw activity.
type StorefrontMetrics struct {
	ordersPlaced  prometheus.Counter
	orderDuration prometheus.Histogram
	pointsEarned  prometheus.Counter
	prizeDraws    *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed through checkout.",
	})
	orderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_placement_duration_seconds",
		Help:    "Duration of order placement in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	pointsEarned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reward_points_earned_total",
		Help: "Reward points credited for orders.",
	})
	prizeDraws := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prize_draws_total",
		Help: "Prize draw attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(ordersPlaced, orderDuration, pointsEarned, prizeDraws)
	return &StorefrontMetrics{
		ordersPlaced:  ordersPlaced,
		orderDuration: orderDuration,
		pointsEarned:  pointsEarned,
		prizeDraws:    prizeDraws,
	}
}

// IncOrderPlaced counts a successfully placed order.
func (m *StorefrontMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// ObserveOrderDuration records how long order placement took.
func (m *StorefrontMetrics) ObserveOrderDuration(duration time.Duration) {
	if m == nil || m.orderDuration == nil {
		return
	}
	m.orderDuration.Observe(duration.Seconds())
}

// AddPointsEarned counts reward points credited for an order.
func (m *StorefrontMetrics) AddPointsEarned(points int) {
	if m == nil || m.pointsEarned == nil || points <= 0 {
		return
	}
	m.pointsEarned.Add(float64(points))
}

// IncPrizeDraw counts a prize draw attempt by outcome.
func (m *StorefrontMetrics) IncPrizeDraw(won bool) {
	if m == nil || m.prizeDraws == nil {
		return
	}
	outcome := "lose"
	if won {
		outcome = "win"
	}
	m.prizeDraws.WithLabelValues(outcome).Inc()
}
