package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"oficinas_alerts/internal/app"
	domainTelegram "oficinas_alerts/internal/domain/telegram"
	"oficinas_alerts/internal/infra/config"
	idb "oficinas_alerts/internal/infra/database"
	"oficinas_alerts/internal/infra/email"
	"oficinas_alerts/internal/infra/httpapi"
	"oficinas_alerts/internal/infra/lock"
	"oficinas_alerts/internal/infra/logger"
	"oficinas_alerts/internal/infra/metrics"
	"oficinas_alerts/internal/infra/scheduler"
	"oficinas_alerts/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"timezone":    cfg.Timezone,
		"log_level":   cfg.LogLevel,
	}).Info("Oficinas Master alert service starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established")

	if cfg.RunMigrations {
		if err := idb.Migrate(ctx, db, logger.Component("migrations")); err != nil {
			mainLogger.WithError(err).Fatal("Could not apply migrations")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not register metrics")
	}

	tenantRepo := idb.NewPostgresTenantRepository(db)
	recordRepo := idb.NewPostgresRecordRepository(db)
	ruleRepo := idb.NewPostgresRuleRepository(db)
	milestoneRepo := idb.NewPostgresMilestoneRepository(db)
	notificationRepo := idb.NewPostgresNotificationRepository(db)

	var locker app.ScanLocker
	if cfg.RedisURL != "" {
		redisLocker, err := lock.NewRedisLocker(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer redisLocker.Close()
		locker = redisLocker
		mainLogger.Info("Using Redis scan lock")
	} else {
		locker = lock.NewMemoryLocker()
		mainLogger.Warn("REDIS_URL not set, scan lock is local to this process")
	}

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if !mailer.IsConfigured() {
		mainLogger.Warn("SMTP not configured, email alerts disabled")
	}

	var bot *telebot.Bot
	var telegramClient domainTelegram.Client
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telegram")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		telegramClient = telegram.NewTelebotAdapter(bot)
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN not set, Telegram alerts disabled")
	}

	for name, ok := range cfg.Integrations.Configured() {
		mainLogger.WithFields(logrus.Fields{"integration": name, "configured": ok}).Debug("Integration status")
	}

	ruleService := app.NewRuleService(ruleRepo, tenantRepo)
	inboxService := app.NewInboxService(notificationRepo, tenantRepo)
	dispatcher := app.NewDispatcher(notificationRepo, mailer, telegramClient, m, logger.Component("dispatcher"))
	scanService := app.NewScanService(
		tenantRepo,
		recordRepo,
		milestoneRepo,
		ruleService,
		app.NewDedupGuard(notificationRepo),
		dispatcher,
		locker,
		m,
		logger.Component("scan"),
		app.ScanServiceConfig{Location: cfg.Location, AppBaseURL: cfg.AppBaseURL, LockTTL: cfg.ScanTimeout * 2},
	)

	if bot != nil {
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(ctx, bot, inboxService, ruleService, botLogger)
		telegram.RegisterAckHandlers(ctx, bot, inboxService, botLogger)
		telegram.RegisterRuleHandlers(ctx, bot, ruleService, botLogger)
		go bot.Start()
		mainLogger.Info("Telegram bot started")
	}

	var scanScheduler *scheduler.ScanScheduler
	if cfg.SchedulerEnabled {
		scanScheduler = scheduler.NewScanScheduler(scanService, logger.Component("scheduler"), cfg.Cron, cfg.Location, cfg.ScanTimeout)
		if err := scanScheduler.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start scheduler")
		}
	}

	server := httpapi.NewApp(httpapi.Deps{
		DB:          db,
		Scanner:     scanService,
		Inbox:       inboxService,
		Rules:       ruleService,
		APIKey:      cfg.FunctionsAPIKey,
		Metrics:     m,
		Gatherer:    reg,
		Logger:      logger.Component("http"),
		ScanTimeout: cfg.ScanTimeout,
	})
	go func() {
		if err := server.Listen(":" + cfg.HTTPPort); err != nil {
			mainLogger.WithError(err).Error("HTTP server stopped")
			stop()
		}
	}()
	mainLogger.WithField("port", cfg.HTTPPort).Info("Application setup complete")

	<-ctx.Done()
	mainLogger.Info("Shutting down application...")

	if scanScheduler != nil {
		scanScheduler.Stop()
	}
	if bot != nil {
		bot.Stop()
	}
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	mainLogger.Info("Application shut down gracefully.")
}
