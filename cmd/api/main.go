package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prontoplus/internal/analytics"
	"prontoplus/internal/auth"
	"prontoplus/internal/calls"
	"prontoplus/internal/config"
	"prontoplus/internal/flags"
	"prontoplus/internal/httpapi"
	"prontoplus/internal/leads"
	"prontoplus/internal/notify"
	"prontoplus/internal/webhook"
	"prontoplus/pkg/logger"
	"prontoplus/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	loc := time.Local
	if cfg.Notify.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Notify.Timezone)
		if err != nil {
			log.Error("invalid NOTIFY_TIMEZONE", "tz", cfg.Notify.Timezone, "err", err)
			os.Exit(1)
		}
	}

	// Repositories
	callRepo := calls.NewPostgresRepo(db)
	leadRepo := leads.NewPostgresRepo(db)
	notifyRepo := notify.NewPostgresRepo(db)

	// Services
	leadSvc := leads.NewService(leadRepo)
	gate := notify.NewGate(notifyRepo, cfg.Notify.Cooldown, cfg.Notify.QuietHourStart, cfg.Notify.QuietHourEnd, loc)
	sender := notify.NewSender(cfg.Notify.ChannelWebhookURL, cfg.App.BaseURL, notifyRepo)
	analyticsSvc := analytics.NewService(analytics.DomainRepo{Calls: callRepo, Leads: leadRepo})

	// Webhook ingestion
	dispatcher := &webhook.Dispatcher{
		Calls:  callRepo,
		Leads:  leadSvc,
		Gate:   gate,
		Sender: sender,
		Locker: notify.NewRedisLocker(rdb),
		Flags:  flags.FromEnv(),
		Log:    log,
	}
	webhookHandler := webhook.Handler{
		Verifier:   webhook.NewVerifier(cfg.Telnyx.WebhookSecret),
		Dispatcher: dispatcher,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, apiDeps{
		AuthMW:  auth.RequireAccessToken(authManager),
		Webhook: webhookHandler,
		Handlers: httpapi.Handlers{
			Auth:      authManager,
			Calls:     callRepo,
			Leads:     leadRepo,
			LeadSvc:   leadSvc,
			Analytics: analyticsSvc,
		},
		DB:    db,
		Redis: rdb,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
