package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	telegoBot "support-bot/bot"
	"support-bot/internal/admin"
	"support-bot/internal/auth"
	"support-bot/internal/config"
	"support-bot/internal/database"
	"support-bot/internal/export"
	"support-bot/internal/gateway"
	"support-bot/internal/locales"
	applog "support-bot/internal/logger"
	"support-bot/internal/relay"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	logger := applog.New(cfg.Debug, cfg.Version)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("sentry.Init failed")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to MongoDB
	connectCtx, connectCancel := context.WithTimeout(context.Background(), 15*time.Second)
	client, db, err := database.ConnectDB(connectCtx, cfg)
	connectCancel()
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("error disconnecting from MongoDB")
			sentry.CaptureException(err)
		} else {
			logger.Info().Msg("disconnected from MongoDB")
		}
	}()

	// Create repository instances
	userRepo := database.NewMongoUserRepository(db)
	messageRepo := database.NewMongoMessageRepository(db)
	mappingRepo := database.NewMongoMappingRepository(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Bot Initialization ---
	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create telego bot")
	}

	gw := gateway.NewTelegram(bot)

	adminChecker, err := auth.NewAdminChecker(cfg.AdminIDs)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create admin checker")
	}

	broadcaster, err := admin.NewBroadcaster(gw, cfg.BroadcastMessagesPerSecond, cfg.BroadcastProgressEvery, logger)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create broadcaster")
	}

	adminManager, err := admin.NewManager(admin.ManagerDeps{
		Gateway:      gw,
		Users:        userRepo,
		AdminChecker: adminChecker,
		Runner:       broadcaster,
		Logger:       logger,
	})
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create admin manager")
	}

	exporter, err := export.NewExcelExporter(userRepo, messageRepo, cfg.ExportDir, logger)
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create exporter")
	}

	router, err := relay.NewRouter(relay.RouterDeps{
		Gateway:       gw,
		Users:         userRepo,
		Messages:      messageRepo,
		Mappings:      mappingRepo,
		Counter:       relay.NewCounter(messageRepo),
		AdminChecker:  adminChecker,
		AdminFlow:     adminManager,
		Exporter:      exporter,
		SupportChatID: cfg.SupportChatID,
		Logger:        logger,
	})
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create router")
	}

	appBot, err := telegoBot.New(telegoBot.BotDeps{
		Bot:              bot,
		Router:           router,
		AdminManager:     adminManager,
		Debug:            cfg.Debug,
		UpdatesPerSecond: cfg.EventsPerSecond,
		ErrorRetryDelay:  cfg.ErrorRetryDelay,
		Logger:           logger,
	})
	if err != nil {
		sentry.CaptureException(err)
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	logger.Info().
		Str("env", cfg.AppEnv).
		Str("version", cfg.Version).
		Int64("support_chat_id", cfg.SupportChatID).
		Int("admins", len(cfg.AdminIDs)).
		Msg("support bot starting")

	go func() {
		if err := appBot.Start(ctx); err != nil && ctx.Err() == nil {
			sentry.CaptureException(err)
			logger.Error().Err(err).Msg("update loop terminated")
			stop()
		}
	}()

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()
	logger.Info().Msg("shutting down")
}
