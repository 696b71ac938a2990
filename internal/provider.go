package internal

import (
	"fmt"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/varta/internal/clients"
	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/engine"
	"github.com/vadiminshakov/varta/internal/services/pricer"
	"github.com/vadiminshakov/varta/internal/services/rules"
	"github.com/vadiminshakov/varta/internal/services/trader"
)

// paper sessions are funded with a fixed virtual quote balance.
var paperInitialQuote = decimal.NewFromInt(10000)

// ServiceProvider is a factory for platform-specific collaborators of
// the decision engine: price source, order executor and instrument
// rules.
type ServiceProvider interface {
	Pricer() pricer.Pricer
	Trader(pair domain.Pair) (engine.Trader, error)
	Rules() rules.Provider
}

// NewServiceProvider dispatches on the client type. This is the single
// point of truth for platform-specific wiring.
func NewServiceProvider(client any, logger *zap.Logger) (ServiceProvider, error) {
	switch c := client.(type) {
	case *binance.Client:
		return &binanceProvider{client: c}, nil
	case *bybit.Client:
		return &bybitProvider{client: c}, nil
	case *clients.PaperClient:
		return &paperProvider{client: c, logger: logger}, nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}

type binanceProvider struct {
	client *binance.Client
}

func (p *binanceProvider) Pricer() pricer.Pricer {
	return pricer.NewBinancePricer(p.client)
}

func (p *binanceProvider) Trader(pair domain.Pair) (engine.Trader, error) {
	return trader.NewBinanceTrader(p.client, pair), nil
}

func (p *binanceProvider) Rules() rules.Provider {
	return rules.NewBinanceRules(p.client)
}

type bybitProvider struct {
	client *bybit.Client
}

func (p *bybitProvider) Pricer() pricer.Pricer {
	return pricer.NewBybitPricer(p.client)
}

func (p *bybitProvider) Trader(pair domain.Pair) (engine.Trader, error) {
	return trader.NewBybitTrader(p.client, pair), nil
}

func (p *bybitProvider) Rules() rules.Provider {
	return rules.NewBybitRules(p.client)
}

// paperProvider runs against live Binance market data with simulated
// order execution.
type paperProvider struct {
	client *clients.PaperClient
	logger *zap.Logger
}

func (p *paperProvider) Pricer() pricer.Pricer {
	return pricer.NewBinancePricer(p.client.GetBinanceClient())
}

func (p *paperProvider) Trader(pair domain.Pair) (engine.Trader, error) {
	return trader.NewPaperTrader(pair, p.Pricer(), paperInitialQuote, p.logger)
}

func (p *paperProvider) Rules() rules.Provider {
	return rules.NewBinanceRules(p.client.GetBinanceClient())
}
