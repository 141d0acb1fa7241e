// Package app builds the application context once at startup and runs the
// HTTP server alongside the background workers.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/startera/internal/ai"
	"github.com/iliyamo/startera/internal/apperr"
	"github.com/iliyamo/startera/internal/archive"
	"github.com/iliyamo/startera/internal/config"
	"github.com/iliyamo/startera/internal/database"
	"github.com/iliyamo/startera/internal/handler"
	"github.com/iliyamo/startera/internal/mailer"
	"github.com/iliyamo/startera/internal/middleware"
	"github.com/iliyamo/startera/internal/pdf"
	"github.com/iliyamo/startera/internal/prompts"
	"github.com/iliyamo/startera/internal/queue"
	"github.com/iliyamo/startera/internal/repository"
	"github.com/iliyamo/startera/internal/router"
	"github.com/iliyamo/startera/internal/service"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived resource of the process.
type App struct {
	Cfg  config.Config
	Log  *zap.Logger
	Echo *echo.Echo

	storage  *database.Selector
	redis    *redis.Client
	async    *mailer.AsyncNotifier
	consumer *queue.Consumer
}

// New wires the application from cfg.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	storage, err := openStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	catalogue, err := prompts.Load(cfg.PromptsFile)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	gateway, err := ai.New(ctx, cfg)
	switch {
	case errors.Is(err, apperr.ErrGatewayUnconfigured):
		log.Warn("AI gateway disabled", zap.Error(err))
		gateway = nil
	case err != nil:
		_ = storage.Close()
		return nil, fmt.Errorf("ai gateway: %w", err)
	}

	a := &App{Cfg: cfg, Log: log, storage: storage}

	notifier := a.buildNotifier(cfg, catalogue)

	var archiver service.Archiver
	if cfg.S3Bucket != "" {
		s3a, err := archive.NewS3Archiver(ctx, archive.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Warn("pdf archive disabled", zap.Error(err))
		} else {
			archiver = s3a
		}
	}

	if cfg.RedisURL != "" {
		a.redis = config.NewRedisClient(cfg.RedisURL, log)
	}

	accounts := service.NewAccountService(storage, repository.NewAccountRepo(), notifier, accountOptions(cfg), log)
	convo := service.NewConversationLog(storage, repository.NewHistoryRepo())
	chat := service.NewChatService(gateway, catalogue, convo, log)
	plans := service.NewPlanService(gateway, catalogue)
	exports := service.NewExportService(pdf.NewExporter(), archiver, catalogue, log)

	cache := middleware.NewResponseCache(cfg.Cache, a.redis, log)
	chat.OnHistoryChange(func(ctx context.Context) {
		for _, route := range router.HistoryRoutes() {
			cache.Invalidate(ctx, route)
		}
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	router.Use(e, middleware.RequestLog(log), cfg.CORSAllowOrigins)
	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(accounts),
		Chat:      handler.NewChatHandler(chat, convo),
		Plan:      handler.NewPlanHandler(plans, exports),
		Storage:   storage,
		JWTSecret: cfg.JWTSecret,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, a.redis, log),
		Cache:     cache,
	})
	a.Echo = e

	log.Info("application ready",
		zap.Bool("managed_db", cfg.DatabaseURL != ""),
		zap.Bool("ai", gateway != nil),
		zap.Bool("mail", cfg.MailEnabled()),
		zap.Bool("queue", a.consumer != nil),
		zap.Bool("redis", a.redis != nil),
		zap.Bool("archive", archiver != nil),
		zap.String("verification_policy", string(cfg.VerificationPolicy)),
	)
	return a, nil
}

// accountOptions derives the account policy. Verification codes are only
// echoed in responses when DEBUG is set outside production.
func accountOptions(cfg config.Config) service.AccountOptions {
	return service.AccountOptions{
		JWTSecret:    cfg.JWTSecret,
		AccessTTLMin: cfg.AccessTTLMin,
		BcryptCost:   cfg.BcryptCost,
		Policy:       cfg.VerificationPolicy,
		ExposeCode:   cfg.Debug && !cfg.IsProduction(),
	}
}

func openStorage(cfg config.Config, log *zap.Logger) (*database.Selector, error) {
	embedded, err := database.OpenEmbedded(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	var managed *sql.DB
	var dialect database.Dialect
	if cfg.DatabaseURL != "" {
		managed, dialect, err = database.OpenManaged(cfg.DatabaseURL)
		if err != nil {
			// a malformed descriptor is treated like an unreachable backend
			log.Error("managed database unusable, embedded only", zap.Error(err))
			managed = nil
		}
	}
	return database.NewSelector(managed, dialect, embedded, database.Options{
		ProbeTimeout:  cfg.DBProbeTimeout,
		RetryInterval: cfg.DBRetryInterval,
	}, log), nil
}

// buildNotifier picks the verification delivery path: a worker pool that
// publishes to the broker when RABBITMQ_URL is set and mails directly
// otherwise. Nothing is sent when SMTP is not configured.
func (a *App) buildNotifier(cfg config.Config, catalogue *prompts.Catalogue) service.VerificationNotifier {
	if !cfg.MailEnabled() {
		a.Log.Info("mail not configured, verification codes are not sent")
		return nil
	}
	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.MailServer,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
	}, catalogue)

	// the broker is reached from the worker pool too, never from the request
	var deliver mailer.Sender = sender
	if cfg.RabbitMQURL != "" {
		a.consumer = queue.NewConsumer(cfg.RabbitMQURL, sender, a.Log)
		deliver = queue.NewPublisher(cfg.RabbitMQURL)
	}
	a.async = mailer.NewAsyncNotifier(deliver, a.Log, 2, 64)
	return a.async
}

// Run serves HTTP and the queue consumer until ctx is cancelled, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + a.Cfg.Port

	g.Go(func() error {
		a.Log.Info("listening", zap.String("addr", addr), zap.String("env", a.Cfg.Env))
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Echo.Shutdown(sctx)
	})
	if a.consumer != nil {
		g.Go(func() error { return a.consumer.Run(gctx) })
	}

	err := g.Wait()
	a.Close()
	return err
}

// Close releases storage, redis and the mail workers.
func (a *App) Close() {
	if a.async != nil {
		a.async.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if err := a.storage.Close(); err != nil {
		a.Log.Warn("storage close", zap.Error(err))
	}
}
