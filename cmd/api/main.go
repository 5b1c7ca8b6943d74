package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-logbook/config"
	_ "support-logbook/docs" // Swagger docs
	"support-logbook/internal/httpserver"
	tgDelivery "support-logbook/internal/logbook/delivery/telegram"
	"support-logbook/internal/logbook/repository/sqlite"
	"support-logbook/internal/logbook/usecase"
	"support-logbook/internal/middleware"
	"support-logbook/internal/wizard"
	"support-logbook/pkg/datemath"
	"support-logbook/pkg/log"
	"support-logbook/pkg/telegram"
)

// @title       Support Logbook API
// @description Telegram-driven task logbook with dialogue entry, summaries, and CSV export.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Support Logbook...")

	// 3. Record store
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Errorf(ctx, "Failed to open database at %s: %v", cfg.Database.Path, err)
		return
	}
	defer db.Close()
	recordRepo := sqlite.New(db, logger)
	logger.Infof(ctx, "Record store ready at %s", cfg.Database.Path)

	// 4. Date parsing in the operators' timezone
	dateParser, dtErr := datemath.NewParser(cfg.Logbook.Timezone)
	if dtErr != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.Logbook.Timezone, dtErr)
		dateParser, _ = datemath.NewParser("UTC")
	}

	// 5. Logbook domain
	logbookUC := usecase.New(logger, recordRepo, dateParser)
	entryWizard := wizard.New(logger, logbookUC,
		cfg.Logbook.SessionCapacity,
		time.Duration(cfg.Logbook.SessionTTLMinutes)*time.Minute,
	)

	// 6. Telegram delivery
	var telegramHandler tgDelivery.Handler
	if cfg.Telegram.BotToken != "" {
		telegramBot := telegram.NewBot(cfg.Telegram.BotToken)
		telegramHandler = tgDelivery.New(logger, logbookUC, entryWizard, telegramBot, dateParser)

		// Register webhook: auto-detect ngrok or fall back to manual config.
		webhookURL := cfg.Telegram.WebhookURL
		if webhookURL == "" {
			ngrokURL, ngrokErr := detectNgrokURL(ctx, "http://ngrok:4040")
			if ngrokErr != nil {
				logger.Warnf(ctx, "Could not detect ngrok URL: %v", ngrokErr)
			} else {
				webhookURL = ngrokURL + "/webhook/telegram"
				logger.Infof(ctx, "Auto-detected ngrok URL: %s", webhookURL)
			}
		}
		if webhookURL != "" {
			if whErr := telegramBot.SetWebhook(webhookURL, cfg.Telegram.WebhookSecret); whErr != nil {
				logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
			} else {
				logger.Infof(ctx, "Telegram webhook registered at %s", webhookURL)
			}
		}
	} else {
		logger.Warn(ctx, "TELEGRAM_BOT_TOKEN is missing, webhook route disabled")
	}

	// 7. HTTP Server
	mw := middleware.New(logger, cfg.Telegram.WebhookSecret, cfg.Webhook.RateLimitPerMin)
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Middleware:      mw,
		TelegramHandler: telegramHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 8. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
