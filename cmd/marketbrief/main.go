package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/rewired-gh/marketbrief/internal/calendar"
	"github.com/rewired-gh/marketbrief/internal/config"
	"github.com/rewired-gh/marketbrief/internal/logger"
	"github.com/rewired-gh/marketbrief/internal/models"
	"github.com/rewired-gh/marketbrief/internal/notify"
	"github.com/rewired-gh/marketbrief/internal/pipeline"
	"github.com/rewired-gh/marketbrief/internal/prices"
	"github.com/rewired-gh/marketbrief/internal/sentiment"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	testRun    = flag.Bool("test", false, "Run one digest immediately and exit")
)

func main() {
	flag.Parse()

	// Secrets may live in a local .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	notifier, err := buildNotifier(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize delivery client: %v", err)
	}

	calClient := calendar.NewClient(cfg.Calendar.URL, cfg.Calendar.Timeout)
	calOpts := calendar.Options{
		ViewerOffsetMinutes: cfg.Calendar.ViewerOffsetMinutes,
		WindowStartHour:     cfg.Calendar.WindowStartHour,
		WindowEndHour:       cfg.Calendar.WindowEndHour,
		Country:             cfg.Calendar.Country,
		MinImpact:           models.ImpactLevel(cfg.Calendar.MinImpact),
	}
	priceClient := prices.NewClient(prices.Config{
		QuoteAPIURL:       cfg.Prices.QuoteAPIURL,
		CryptoAPIURL:      cfg.Prices.CryptoAPIURL,
		SymbolTimeout:     cfg.Prices.SymbolTimeout,
		SecondaryTimeout:  cfg.Prices.SecondaryTimeout,
		Jitter:            cfg.Prices.Jitter,
		EstimateOnFailure: cfg.Prices.EstimateOnFailure,
	})
	sentClient := sentiment.NewClient(sentiment.Config{
		IndexAPIURL: cfg.Sentiment.IndexAPIURL,
		Timeout:     cfg.Sentiment.Timeout,
	})

	p := pipeline.New(calClient, calOpts, priceClient, sentClient, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *testRun {
		logger.Info("Test mode: running one digest now")
		p.Run(ctx)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule.Cron, func() { p.Run(ctx) }); err != nil {
		logger.Fatal("Failed to schedule digest: %v", err)
	}
	c.Start()
	logger.Info("Digest scheduled (cron: %q, delivery: %s)", cfg.Schedule.Cron, cfg.Delivery.Provider)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received, stopping scheduler...")
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Service stopped")
}

// buildNotifier resolves the delivery transport once at startup. Disabled
// delivery gets the no-op stub.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.Delivery.Provider {
	case "feishu":
		return notify.NewFeishu(
			cfg.Delivery.FeishuBaseURL,
			cfg.Delivery.Token,
			cfg.Delivery.ChatID,
			cfg.Delivery.MaxRetries,
			cfg.Delivery.RetryDelayBase,
			cfg.Delivery.Timeout,
		)
	case "telegram":
		return notify.NewTelegram(
			cfg.Delivery.Token,
			cfg.Delivery.ChatID,
			cfg.Delivery.MaxRetries,
			cfg.Delivery.RetryDelayBase,
		)
	default:
		logger.Debug("Delivery disabled, digests will be logged only")
		return notify.Noop{}, nil
	}
}
