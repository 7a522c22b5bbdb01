package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/00anuyh/souvenir-backend/api/controllers"
	"github.com/00anuyh/souvenir-backend/api/middleware"
	"github.com/00anuyh/souvenir-backend/internal/auth"
	"github.com/00anuyh/souvenir-backend/internal/cart"
	"github.com/00anuyh/souvenir-backend/internal/community"
	"github.com/00anuyh/souvenir-backend/internal/event"
	"github.com/00anuyh/souvenir-backend/internal/favorites"
	"github.com/00anuyh/souvenir-backend/internal/orders"
	"github.com/00anuyh/souvenir-backend/internal/reviews"
	"github.com/00anuyh/souvenir-backend/internal/rewards"
	"github.com/00anuyh/souvenir-backend/pkg/auth/session"
	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/db"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
)

// Deps groups everything the router needs. Registry is optional; when set the
// router exposes /metrics.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   db.Pinger
	Session session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	CartService     cart.Service
	RewardsService  rewards.Service
	OrdersService   orders.Service
	EventService    event.Service
	ReviewsService  reviews.Service
	CommunitySvc    community.Service
	FavoritesSvc    favorites.Service

	Registry *prometheus.Registry
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.Register(deps.RegisterService, logg))
			r.Post("/login", controllers.Login(deps.AuthService, logg))
			r.Post("/refresh", controllers.Refresh(deps.AuthService, logg))
			r.With(middleware.Auth(cfg.JWT, deps.Session, logg)).
				Post("/logout", controllers.Logout(deps.AuthService, logg))
		})

		// product pages and the board render without a session
		r.Get("/products/{productKey}/reviews", controllers.ReviewList(deps.ReviewsService, logg))
		r.Get("/community", controllers.CommunityList(deps.CommunitySvc, logg))
		r.Get("/community/{postId}", controllers.CommunityGet(deps.CommunitySvc, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Session, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.CartService, logg))
				r.Post("/items", controllers.CartAdd(deps.CartService, logg))
				r.Patch("/items", controllers.CartSetQty(deps.CartService, logg))
				r.Delete("/items/{key}", controllers.CartRemove(deps.CartService, logg))
				r.Post("/items/remove", controllers.CartRemoveMany(deps.CartService, logg))
				r.Delete("/", controllers.CartClear(deps.CartService, logg))
				r.Get("/count", controllers.CartCount(deps.CartService, logg))
			})

			r.Get("/rewards", controllers.RewardsGet(deps.RewardsService, logg))
			r.Get("/rewards/coupons", controllers.RewardsCoupons(deps.RewardsService, logg))
			r.Post("/rewards/coupons/{couponId}/use", controllers.RewardsCouponUse(deps.RewardsService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderPlace(deps.OrdersService, logg))
				r.Get("/", controllers.OrderList(deps.OrdersService, logg))
				r.Get("/{orderId}", controllers.OrderGet(deps.OrdersService, logg))
				r.Delete("/", controllers.OrderClear(deps.OrdersService, logg))
			})

			r.Route("/event", func(r chi.Router) {
				r.Get("/eligible", controllers.EventEligible(deps.EventService, logg))
				r.Post("/draw", controllers.EventDraw(deps.EventService, logg))
			})

			r.Post("/products/{productKey}/reviews", controllers.ReviewAdd(deps.ReviewsService, logg))
			r.Patch("/products/{productKey}/reviews/{reviewId}", controllers.ReviewUpdate(deps.ReviewsService, logg))
			r.Delete("/products/{productKey}/reviews/{reviewId}", controllers.ReviewDelete(deps.ReviewsService, logg))

			r.Post("/community", controllers.CommunityCreate(deps.CommunitySvc, logg))
			r.Get("/community/mine", controllers.CommunityMine(deps.CommunitySvc, logg))
			r.Post("/community/{postId}/like", controllers.CommunityLike(deps.CommunitySvc, logg))
			r.Patch("/community/{postId}", controllers.CommunityUpdate(deps.CommunitySvc, logg))
			r.Delete("/community/{postId}", controllers.CommunityDelete(deps.CommunitySvc, logg))

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoritesList(deps.FavoritesSvc, logg))
				r.Get("/slugs", controllers.FavoritesSlugs(deps.FavoritesSvc, logg))
				r.Post("/{slug}/toggle", controllers.FavoritesToggle(deps.FavoritesSvc, logg))
				r.Delete("/", controllers.FavoritesClear(deps.FavoritesSvc, logg))
			})
		})
	})

	return r
}
