package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/00anuyh/souvenir-backend/api/routes"
	"github.com/00anuyh/souvenir-backend/internal/auth"
	"github.com/00anuyh/souvenir-backend/internal/cart"
	"github.com/00anuyh/souvenir-backend/internal/community"
	"github.com/00anuyh/souvenir-backend/internal/event"
	"github.com/00anuyh/souvenir-backend/internal/favorites"
	"github.com/00anuyh/souvenir-backend/internal/orders"
	"github.com/00anuyh/souvenir-backend/internal/reviews"
	"github.com/00anuyh/souvenir-backend/internal/rewards"
	"github.com/00anuyh/souvenir-backend/internal/users"
	"github.com/00anuyh/souvenir-backend/pkg/auth/session"
	"github.com/00anuyh/souvenir-backend/pkg/config"
	"github.com/00anuyh/souvenir-backend/pkg/db"
	"github.com/00anuyh/souvenir-backend/pkg/env"
	"github.com/00anuyh/souvenir-backend/pkg/logger"
	"github.com/00anuyh/souvenir-backend/pkg/metrics"
	"github.com/00anuyh/souvenir-backend/pkg/migrate"
	"github.com/00anuyh/souvenir-backend/pkg/pubsub"
	"github.com/00anuyh/souvenir-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var pubsubClient *pubsub.Client
	if cfg.Features.PublishEvents && cfg.GCP.ProjectID != "" {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
	}
	notifier := pubsub.NewNotifier(pubsubClient, logg)

	defer func() {
		if err := closeResources(dbClient, redisClient, pubsubClient); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	rewardsService, err := rewards.NewService(rewards.NewRepository(dbClient.DB()), rewards.NewCouponRepository(dbClient.DB()), dbClient, redisClient, cfg.Rewards)
	if err != nil {
		logg.Error(context.Background(), "failed to create rewards service", err)
		os.Exit(1)
	}

	tokenManager, err := rewards.NewTokenManager(redisClient, cfg.Rewards.PurchaseTokenTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchase token manager", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.NewRepository(dbClient.DB()), dbClient, notifier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Cart:    cartService,
		Rewards: rewardsService,
		Tokens:  tokenManager,
		Notify:  notifier,
		Metrics: storeMetrics,
		Logger:  logg,
		Config:  cfg.Rewards,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	eventService, err := event.NewService(tokenManager, rewardsService, storeMetrics, cfg.Event)
	if err != nil {
		logg.Error(context.Background(), "failed to create event service", err)
		os.Exit(1)
	}

	reviewRepo, err := reviews.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create review repository", err)
		os.Exit(1)
	}
	reviewsService, err := reviews.NewService(reviewRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	communityRepo, err := community.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create community repository", err)
		os.Exit(1)
	}
	communityService, err := community.NewService(communityRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create community service", err)
		os.Exit(1)
	}

	favoritesRepo, err := favorites.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites repository", err)
		os.Exit(1)
	}
	favoritesService, err := favorites.NewService(favoritesRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create favorites service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Rewards:        rewardsService,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Session:         sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			CartService:     cartService,
			RewardsService:  rewardsService,
			OrdersService:   ordersService,
			EventService:    eventService,
			ReviewsService:  reviewsService,
			CommunitySvc:    communityService,
			FavoritesSvc:    favoritesService,
			Registry:        registry,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func closeResources(dbClient *db.Client, redisClient *redis.Client, pubsubClient *pubsub.Client) error {
	var errs []error
	if err := dbClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if err := redisClient.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}
	if pubsubClient != nil {
		if err := pubsubClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("pubsub: %w", err))
		}
	}
	return multierr.Combine(errs...)
}
