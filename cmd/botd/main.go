// cmd/botd/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"librabot/internal/auth"
	"librabot/internal/chat"
	"librabot/internal/config"
	"librabot/internal/form"
	"librabot/internal/library"
	"librabot/internal/ops"
	"librabot/internal/session"
	"librabot/internal/telegram"
	"librabot/internal/telemetry"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enable {
		shutdown, err := telemetry.Setup(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			logger.Fatal("set up telemetry", zap.Error(err))
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("flush traces", zap.Error(err))
			}
		}()
	}

	db, err := library.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := library.EnsureSchema(ctx, db, cfg.Database.Driver); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	sessions := session.NewStore()
	forms := form.NewEngine(sessions, logger)
	lib := library.NewService(db, logger)
	verifier := auth.NewVerifier(cfg.Admin.Username, cfg.Admin.Password)
	dispatcher := chat.NewEngine(sessions, forms, lib, verifier, cfg.Loan.DefaultDays, logger)

	bot, err := telegram.New(cfg.Bot.Token, dispatcher, logger)
	if err != nil {
		logger.Fatal("connect to telegram", zap.Error(err))
	}

	opsServer := ops.NewServer(cfg.Ops.Addr, db, logger)
	go func() {
		if err := opsServer.ListenAndServe(); err != nil {
			logger.Error("ops endpoint failed", zap.Error(err))
		}
	}()

	go bot.Start()

	<-ctx.Done()
	logger.Info("shutting down")
	bot.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shut down ops endpoint", zap.Error(err))
	}
}
