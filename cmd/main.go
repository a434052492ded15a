package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/bot"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/config"
	cronpkg "github.com/bingwamtaa/Whatsapp-Data-Boy/internal/cron"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/middleware"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/payment"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/chat"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/router"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/store"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Stores (process-lifetime, in-memory) ---
	stores := &bot.Stores{
		Sessions:  store.NewSessionStore(),
		Orders:    store.NewOrderStore(),
		Referrals: store.NewReferralStore(),
		Catalog:   store.NewCatalogStore(),
		Bans:      store.NewBanStore(),
		Settings:  store.NewSettingsStore(cfg),
	}

	// --- Chat gateway client ---
	sender := chat.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.Token)

	// --- Payment gateway ---
	gateway := payment.NewPayHeroGateway(cfg.PayHero.APIURL, cfg.PayHero.CallbackURL, stores.Settings, logger)

	// --- Bot ---
	b := bot.New(cfg, stores, sender, gateway, logger)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Message Deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewMessageDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for message dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Routes ---
	router.Setup(e, b, deduper, logger)

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(stores.Sessions, stores.Referrals, sender, cfg.Bot.AdminID(), logger)
	scheduler.Start()

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting WhatsApp Data Boy server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// Start dispatch loop
	go b.Start()
	b.AnnounceStartup()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop bot (drains in-flight payment pushes)
	b.Stop()

	// Stop cron
	ctx := scheduler.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
