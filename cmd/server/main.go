package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"roombook/config"
	"roombook/internal/access"
	"roombook/internal/adapters/auth"
	"roombook/internal/adapters/email"
	"roombook/internal/adapters/queue"
	httpdelivery "roombook/internal/delivery/http"
	"roombook/internal/delivery/http/controllers"
	"roombook/internal/delivery/http/middleware"
	"roombook/internal/metrics"
	"roombook/internal/repository/postgres"
	"roombook/internal/services"
)

const shutdownTimeout = 10 * time.Second

// @title Roombook API
// @version 1.0
// @description Multi-tenant room booking: spaces, rooms, bookings, and availability.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	rdb := newRedis(ctx, cfg.Redis, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	publisher, closePublisher, err := queue.NewPublisher(cfg.RabbitURL, logger)
	if err != nil {
		return fmt.Errorf("connect rabbitmq: %w", err)
	}
	defer func() {
		if err := closePublisher(); err != nil {
			logger.Warn("close publisher", "err", err)
		}
	}()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	key, err := auth.DeriveKey(cfg.EncKey)
	if err != nil {
		return fmt.Errorf("derive session key: %w", err)
	}
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, key)
	if err != nil {
		return fmt.Errorf("create token issuer: %w", err)
	}

	userRepo := postgres.NewUserRepository(db)
	spaceRepo := postgres.NewSpaceRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	gate := access.NewGate(spaceRepo, roomRepo)

	userService := services.NewUserService(userRepo, spaceRepo, auth.NewBcryptHasher(cfg.BcryptCost),
		issuer, cfg.TokenExpiry, emailService, logger, cfg.ContextTimeout)
	spaceService := services.NewSpaceService(spaceRepo, cfg.ContextTimeout)
	roomService := services.NewRoomService(roomRepo, gate, cfg.ContextTimeout)
	bookingService := services.NewBookingService(services.BookingDeps{
		Bookings:     bookingRepo,
		Rooms:        roomRepo,
		Users:        userRepo,
		Gate:         gate,
		Publisher:    publisher,
		EmailService: emailService,
		Metrics:      m,
		Logger:       logger,
	}, cfg.ContextTimeout)

	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		Verifier:       userService,
		Limiter:        middleware.NewRateLimiter(cfg.RateLimit, rdb, m, logger),
		Gatherer:       registry,
		Users:          controllers.NewUserController(logger, userService),
		Spaces:         controllers.NewSpaceController(logger, spaceService),
		Rooms:          controllers.NewRoomController(logger, roomService),
		Bookings:       controllers.NewBookingController(logger, bookingService),
		Health:         controllers.NewHealthController(logger, db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newRedis returns a connected client, or nil when Redis is not configured or unreachable.
// The rate limiter falls back to in-process buckets without it.
func newRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, rate limiting in memory", "addr", cfg.Addr, "err", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
