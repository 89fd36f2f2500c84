// @title EventHub API
// @version 1.0
// @description Event management: events, RSVPs, reviews, invitations and user profiles.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	deliveryhttp "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/notify"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
	"eventhub/pkg/retry"
)

const redisQueueKey = "eventhub:jobs"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg.DBUrl, logger)
	if err != nil {
		logger.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := postgres.Migrate(db, logger); err != nil {
			logger.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	invitationRepo := postgres.NewInvitationRepository(db)

	// Email
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.SESRegion,
			AccessKeyID:     cfg.Email.SESAccessKeyID,
			SecretAccessKey: cfg.Email.SESSecretAccessKey,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		},
	}, logger)
	if err != nil {
		logger.Error("mailer setup failed", "err", err)
		os.Exit(1)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("email templates failed to load", "err", err)
		os.Exit(1)
	}
	emailSvc := services.NewEmailService(mailer, renderer, logger)

	// Notification queue
	queue, err := newQueue(ctx, cfg.Queue)
	if err != nil {
		logger.Error("queue setup failed", "backend", cfg.Queue.Backend, "err", err)
		os.Exit(1)
	}
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Queue.MaxAttempts
	dispatcher := notify.NewDispatcher(queue, logger, retryCfg, cfg.Queue.Workers)

	// Services
	resolver := services.NewVisibilityResolver(eventRepo, invitationRepo, rsvpRepo)
	authSvc := services.NewAuthService(userRepo, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, dispatcher)
	userSvc := services.NewUserService(userRepo, profileRepo, cfg.ContextTimeout)
	eventSvc := services.NewEventService(eventRepo, userRepo, rsvpRepo, resolver, dispatcher, cfg.ContextTimeout)
	rsvpSvc := services.NewRSVPService(rsvpRepo, resolver, dispatcher, cfg.ContextTimeout)
	reviewSvc := services.NewReviewService(reviewRepo, resolver, dispatcher, cfg.ContextTimeout)
	invitationSvc := services.NewInvitationService(invitationRepo, userRepo, resolver, dispatcher, cfg.ContextTimeout)
	notificationSvc := services.NewNotificationService(userRepo, eventRepo, rsvpRepo, reviewRepo, invitationRepo, emailSvc, logger)

	// Workers outlive the signal context so buffered jobs drain during shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher.HandleAll(notificationSvc.Handlers())
	dispatcher.Start(workerCtx)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:       controllers.NewAuthController(logger, authSvc),
		User:       controllers.NewUserController(logger, userSvc),
		Event:      controllers.NewEventController(logger, eventSvc),
		RSVP:       controllers.NewRSVPController(logger, rsvpSvc),
		Review:     controllers.NewReviewController(logger, reviewSvc),
		Invitation: controllers.NewInvitationController(logger, invitationSvc),
		Health:     controllers.NewHealthController(logger, db),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "queue", cfg.Queue.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher shutdown", "err", err)
	}
}

// openDB opens the pool and waits for Postgres to accept connections.
func openDB(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 10
	err = retry.DoWithLog(ctx, cfg, "database ping", func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return db.PingContext(pingCtx)
	}, func(attempt int, err error, next time.Duration) {
		logger.Warn("database not ready", "attempt", attempt, "retry_in", next, "err", err)
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func newQueue(ctx context.Context, cfg config.QueueConfig) (notify.Queue, error) {
	if cfg.Backend == config.QueueRedis {
		client, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return notify.NewRedisQueue(client, redisQueueKey), nil
	}
	return notify.NewMemoryQueue(cfg.Buffer), nil
}
