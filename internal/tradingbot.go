// Package internal wires the decision engine to exchange collaborators
// and drives the live monitoring loop.
package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/varta/config"
	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/engine"
	"github.com/vadiminshakov/varta/internal/services/pricer"
	"github.com/vadiminshakov/varta/internal/storage/trades"
	"github.com/vadiminshakov/varta/pkg/retrier"
)

// TradingBot polls market prices and feeds them to one session.
type TradingBot struct {
	Session *engine.Session
	Pricer  pricer.Pricer
	Journal *trades.WALStore
	Config  config.Config

	retrier *retrier.Retrier
}

// NewTradingBot validates the configuration against the instrument
// rules of the platform and assembles a session with its collaborators.
// A quantity below the instrument minimum aborts session start.
func NewTradingBot(ctx context.Context, conf config.Config, client any, logger *zap.Logger) (*TradingBot, error) {
	provider, err := NewServiceProvider(client, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create service provider")
	}

	instrumentRules, err := provider.Rules().GetRules(ctx, conf.Pair)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch instrument rules for %s", conf.Pair.String())
	}

	quantity, err := domain.NormalizeQuantity(conf.Quantity, instrumentRules)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid quantity for %s", conf.Pair.String())
	}

	logger.Info("quantity normalized",
		zap.String("pair", conf.Pair.String()),
		zap.String("requested", conf.Quantity.String()),
		zap.String("normalized", quantity.String()),
		zap.Int32("precision", instrumentRules.Precision))

	currentTrader, err := provider.Trader(conf.Pair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trader")
	}

	journal, err := trades.NewWALStore("", conf.Pair)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trade journal")
	}

	thresholds, err := domain.NewThresholds(conf.RelativeThresholds,
		conf.BuyThreshold, conf.SellThreshold, conf.StepBuyThreshold, conf.StepSellThreshold)
	if err != nil {
		return nil, errors.Wrap(err, "invalid thresholds")
	}

	session, err := engine.NewSession(engine.Config{
		Pair:       conf.Pair,
		Mode:       conf.Mode,
		Thresholds: thresholds,
		Quantity:   quantity,
		Cooldown:   conf.Cooldown,
	}, currentTrader, logger, engine.WithJournal(journal))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	return &TradingBot{
		Session: session,
		Pricer:  provider.Pricer(),
		Journal: journal,
		Config:  conf,
		retrier: retrier.New(retrier.WithInitialInterval(500*time.Millisecond), retrier.WithMaxRetries(2)),
	}, nil
}

// Run executes the monitoring loop until ctx is cancelled. Price fetch
// failures skip the observation; order failures are logged and the loop
// continues. On cancellation the session is stopped at an observation
// boundary and the final summary is logged.
func (b *TradingBot) Run(ctx context.Context, logger *zap.Logger) error {
	logger = logger.With(zap.String("pair", b.Config.Pair.String()))

	ticker := time.NewTicker(b.Config.PollPriceInterval)
	defer ticker.Stop()

	logger.Info("starting monitoring loop",
		zap.String("mode", b.Config.Mode.String()),
		zap.Duration("poll_interval", b.Config.PollPriceInterval),
		zap.Duration("cooldown", b.Config.Cooldown))

	for {
		select {
		case <-ctx.Done():
			summary := b.Session.Stop()
			b.logSummary(logger, summary)
			return ctx.Err()
		case <-ticker.C:
			price, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (decimal.Decimal, error) {
				return b.Pricer.GetPrice(ctx, b.Config.Pair)
			})
			if err != nil {
				logger.Warn("price unavailable, skipping observation", zap.Error(err))
				continue
			}

			event, err := b.Session.Observe(ctx, price, time.Now())
			if err != nil {
				logger.Error("order attempt failed", zap.Error(err))
				continue
			}

			if event != nil {
				logger.Info("trade executed", zap.String("event", event.String()))
			}
		}
	}
}

// Close releases bot resources.
func (b *TradingBot) Close() error {
	return b.Journal.Close()
}

func (b *TradingBot) logSummary(logger *zap.Logger, summary domain.SessionSummary) {
	if summary.Trades == 0 {
		logger.Info("no trades executed this session")
		return
	}

	fields := []zap.Field{
		zap.Int("trades", summary.Trades),
		zap.String("total_bought", summary.TotalBought.String()),
		zap.String("total_sold", summary.TotalSold.String()),
		zap.String("total_profit", summary.TotalProfit.String()),
		zap.String("total_loss", summary.TotalLoss.String()),
	}
	if summary.PercentDefined {
		fields = append(fields,
			zap.String("profit_percent", summary.ProfitPercent.StringFixed(2)),
			zap.String("loss_percent", summary.LossPercent.StringFixed(2)))
	} else {
		fields = append(fields, zap.String("profit_percent", "n/a"), zap.String("loss_percent", "n/a"))
	}

	logger.Info("session summary", fields...)
}
