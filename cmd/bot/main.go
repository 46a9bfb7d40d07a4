package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sbmn-interviewer/internal/analytics"
	"sbmn-interviewer/internal/app"
	"sbmn-interviewer/internal/config"
	"sbmn-interviewer/internal/httpapi"
	"sbmn-interviewer/internal/scheduler"
	"sbmn-interviewer/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build interviewer", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.New(cfg.TelegramBotToken, a.Interview, cfg.AdminUserID, logger)
		if err != nil {
			logger.Fatal("failed to create bot", zap.Error(err))
		}
	}

	sched := scheduler.New(logger)
	if err := sched.Register("session-sweep", cfg.SweepSchedule, func(ctx context.Context) error {
		a.Interview.Sweep(cfg.SessionIdleTTL)
		return nil
	}); err != nil {
		logger.Fatal("failed to schedule sweep", zap.Error(err))
	}
	if a.Journal != nil {
		if err := sched.Register("daily-report", cfg.ReportSchedule, func(ctx context.Context) error {
			entries, err := a.Journal.Load()
			if err != nil {
				return err
			}
			summary := analytics.AnalyzeDay(entries, time.Now()).Summary()
			logger.Info("daily export report", zap.String("summary", summary))
			if bot != nil {
				bot.NotifyAdmin(summary)
			}
			return nil
		}); err != nil {
			logger.Fatal("failed to schedule report", zap.Error(err))
		}
	}
	sched.Start()
	defer sched.Stop()

	if bot == nil && cfg.HTTPAddr == "" {
		logger.Fatal("nothing to serve: set TELEGRAM_BOT_TOKEN or HTTP_ADDR")
	}

	var wg sync.WaitGroup
	if bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot.Start(ctx)
		}()
	}
	if cfg.HTTPAddr != "" {
		srv := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewHandler(a.Interview, logger), logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				logger.Error("http server stopped", zap.Error(err))
				stop()
			}
		}()
	}

	wg.Wait()
	logger.Info("shutdown complete")
}
