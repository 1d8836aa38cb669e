package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/intake_bot/internal/app"
	"github.com/Freeeeeet/intake_bot/internal/config"
	"github.com/Freeeeeet/intake_bot/internal/controller"
	"github.com/Freeeeeet/intake_bot/internal/conversation"
	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/Freeeeeet/intake_bot/internal/service"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireToken(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	flavor := cfg.Flavor()

	logger.Info("Starting intake bot",
		zap.String("environment", cfg.Environment),
		zap.String("flow", string(flavor)),
		zap.String("store", cfg.StoreDriver),
		zap.String("sessions", cfg.SessionStore))

	infra, err := app.NewInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	ledger := service.NewLedger(infra.Table, logger)
	if err := ledger.Init(ctx, flavor); err != nil {
		return err
	}

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		return err
	}

	var notifier service.Notifier = service.NopNotifier{}
	if cfg.AdminID != 0 {
		notifier = controller.NewTelegramNotifier(b, cfg.AdminID)
	} else {
		logger.Warn("ADMIN_ID is not set, operator notifications are disabled")
	}

	engine := conversation.NewEngine(flavor, infra.Sessions, ledger, notifier, logger)
	defer engine.Wait()

	if times := cfg.AutoSlotTimes(); flavor == model.FlavorSlots && len(times) > 0 {
		scheduler := app.NewScheduler(ledger, app.SlotPlan{
			Times:        times,
			DaysAhead:    cfg.AutoSlotsDaysAhead,
			SkipWeekends: cfg.AutoSlotsSkipWeekends,
		}, logger)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	botController := controller.NewBotController(b, engine, cfg.SlotsImages, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		return err
	}

	return botController.Start(ctx)
}
