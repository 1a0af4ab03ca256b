package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aumugisha-umu/seido-sub017/internal/adapters"
	"github.com/aumugisha-umu/seido-sub017/internal/adapters/storage"
	"github.com/aumugisha-umu/seido-sub017/internal/auth"
	"github.com/aumugisha-umu/seido-sub017/internal/buildings"
	"github.com/aumugisha-umu/seido-sub017/internal/contracts"
	"github.com/aumugisha-umu/seido-sub017/internal/conversations"
	"github.com/aumugisha-umu/seido-sub017/internal/dashboard"
	"github.com/aumugisha-umu/seido-sub017/internal/email"
	"github.com/aumugisha-umu/seido-sub017/internal/events"
	apphttp "github.com/aumugisha-umu/seido-sub017/internal/http"
	"github.com/aumugisha-umu/seido-sub017/internal/http/router"
	"github.com/aumugisha-umu/seido-sub017/internal/identity"
	"github.com/aumugisha-umu/seido-sub017/internal/interventions"
	"github.com/aumugisha-umu/seido-sub017/internal/notification"
	"github.com/aumugisha-umu/seido-sub017/internal/planning"
	planservice "github.com/aumugisha-umu/seido-sub017/internal/planning/service"
	"github.com/aumugisha-umu/seido-sub017/internal/quotes"
	"github.com/aumugisha-umu/seido-sub017/internal/scheduler"
	"github.com/aumugisha-umu/seido-sub017/internal/webhook"
	"github.com/aumugisha-umu/seido-sub017/platform/config"
	"github.com/aumugisha-umu/seido-sub017/platform/db"
	"github.com/aumugisha-umu/seido-sub017/platform/logger"
	"github.com/aumugisha-umu/seido-sub017/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for file uploads (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "intervention-documents", cfg.GetMinioBucketInterventionDocuments())
	ensureBucket(ctx, log, storageSvc, "conversation-attachments", cfg.GetMinioBucketConversationAttachments())
	log.Info(
		"storage service initialized",
		"interventionDocumentsBucket", cfg.GetMinioBucketInterventionDocuments(),
		"conversationAttachmentsBucket", cfg.GetMinioBucketConversationAttachments(),
	)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing
	// beyond the in-app notification routes)
	notificationModule := notification.New(pool, sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Initialize domain modules
	identityModule := identity.NewModule(pool, cfg, log, val)
	identityModule.SetEventBus(eventBus)

	authModule := auth.NewModule(pool, cfg, log, val)
	authModule.SetEventBus(eventBus)
	authModule.SetInviteStore(adapters.NewInviteStore(identityModule.Repository()))

	buildingsModule := buildings.NewModule(pool, log, val)
	contractsModule := contracts.NewModule(pool, log, val)
	dashboardModule := dashboard.NewModule(pool, log)

	interventionsModule := interventions.NewModule(pool, log, eventBus, val, cfg.GetAppBaseURL())
	interventionsModule.SetStorage(storageSvc, cfg.GetMinioBucketInterventionDocuments())

	quotesModule := quotes.NewModule(pool, eventBus, val)
	planningModule := planning.NewModule(pool, eventBus, val)

	conversationsModule := conversations.NewModule(pool, storageSvc,
		cfg.GetMinioBucketConversationAttachments(), cfg.GetEmailReplyDomain(), eventBus, val, log)

	webhookModule, err := webhook.NewModule(pool,
		adapters.NewInboundMailSink(conversationsModule.Service()), cfg, cfg.GetEmailReplyDomain(), log)
	if err != nil {
		log.Error("failed to initialize webhook module", "error", err)
		panic("failed to initialize webhook module: " + err.Error())
	}

	// Wire lifecycle precondition checkers: interventions → planning + quotes
	interventionsModule.Service().SetSlotChecker(adapters.NewPlanningSlotChecker(planningModule.Service()))
	interventionsModule.Service().SetQuoteChecker(adapters.NewQuoteAcceptanceChecker(quotesModule.Service()))

	// Wire lot occupancy checks: interventions → contracts
	interventionsModule.Service().SetOccupancyChecker(adapters.NewLeaseOccupancyChecker(contractsModule.Service()))

	// Wire intervention state reads: quotes → interventions
	quotesModule.Service().SetInterventionReader(adapters.NewInterventionStateReader(interventionsModule.Repository()))

	// Wire the asynq reminder client (disabled without redis)
	if reminderScheduler != nil {
		planningModule.Service().SetReminderScheduler(reminderScheduler)
	}

	// Wire notification fan-out readers
	notificationModule.SetParticipantsReader(adapters.NewInterventionParticipants(interventionsModule.Repository()))
	notificationModule.SetMemberDirectory(adapters.NewMemberDirectory(identityModule.Repository()))

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			identityModule,
			buildingsModule,
			contractsModule,
			interventionsModule,
			quotesModule,
			planningModule,
			conversationsModule,
			webhookModule,
			dashboardModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (planservice.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; slot reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
