// Command varta runs a threshold-driven trading bot: it watches the
// price of one or more pairs and submits market orders when the price
// deviates from a reference by configured thresholds.
//
// Usage:
//
//	varta --setup                 (interactive configuration wizard)
//	varta --config config.yaml
//	varta (uses CLI arguments)
//
// Required environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	Paper trading needs no credentials.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vadiminshakov/varta/config"
	"github.com/vadiminshakov/varta/internal"
	"github.com/vadiminshakov/varta/internal/clients"
	"github.com/vadiminshakov/varta/internal/setup"
	"github.com/vadiminshakov/varta/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	setupFlag := flag.Bool("setup", false, "run the interactive configuration wizard")

	configs, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if *setupFlag {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		return
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	for _, conf := range configs {
		client, err := newClient(conf.Platform)
		if err != nil {
			logger.Fatal("failed to create exchange client", zap.Error(err))
		}

		bot, err := internal.NewTradingBot(ctx, conf, client, logger)
		if err != nil {
			logger.Fatal("failed to create trading bot", zap.Error(err))
		}
		defer bot.Close()

		g.Go(func() error {
			return bot.Run(ctx, logger)
		})

		if conf.WebAddr != "" {
			server := web.NewServer(conf.WebAddr, bot.Session, bot.Journal)
			g.Go(func() error {
				return server.Start(ctx)
			})
			logger.Info("web view started", zap.String("addr", conf.WebAddr))
		}

		logger.Info("started", zap.String("pair", conf.Pair.String()), zap.String("platform", conf.Platform))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err.Error())
	}
}

func newClient(platform string) (any, error) {
	switch platform {
	case "binance":
		apiKey := os.Getenv("BINANCE_API_KEY")
		apiSecret := os.Getenv("BINANCE_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, errors.New("BINANCE_API_KEY and BINANCE_API_SECRET environment variables must be set")
		}
		return clients.NewBinanceClient(apiKey, apiSecret), nil
	case "bybit":
		apiKey := os.Getenv("BYBIT_API_KEY")
		apiSecret := os.Getenv("BYBIT_API_SECRET")
		if apiKey == "" || apiSecret == "" {
			return nil, errors.New("BYBIT_API_KEY and BYBIT_API_SECRET environment variables must be set")
		}
		return clients.NewBybitClient(apiKey, apiSecret), nil
	case "paper":
		return clients.NewPaperClient(), nil
	default:
		return nil, errors.New("unsupported platform: " + platform)
	}
}
