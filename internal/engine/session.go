// Package engine implements the threshold decision engine: a state
// machine that turns price observations into market order intents.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/ledger"
	"go.uber.org/zap"
)

// State of a session.
type State int

const (
	// StateIdle means no price has been observed yet; the reference
	// price is not set.
	StateIdle State = iota
	// StateMonitoring is the steady state.
	StateMonitoring
	// StateStopped is terminal; reached through Stop only.
	StateStopped
)

// ErrSessionStopped is returned by Observe after Stop.
var ErrSessionStopped = errors.New("session is stopped")

// Trader submits market orders to an exchange.
type Trader interface {
	SubmitMarketOrder(ctx context.Context, side domain.Side, quantity decimal.Decimal, clientOrderID string) error
}

// tradeSink receives executed trades for persistence. Sink failures are
// reporting-only and never fail the decision pass.
type tradeSink interface {
	Save(record domain.TradeRecord) error
}

// Config is the validated configuration of one session.
type Config struct {
	Pair       domain.Pair
	Mode       domain.Mode
	Thresholds domain.Thresholds
	// Quantity is the normalized trade size, fixed for the session.
	Quantity decimal.Decimal
	// Cooldown between order submissions; DefaultCooldown when zero.
	Cooldown time.Duration
}

// Session drives the buy/sell decision logic for one pair.
//
// The reference price is initialized from the first observation and
// rebased to the fill price on every primary execution; step executions
// accumulate against the current reference without rebasing. The mutex
// guards the full evaluate-then-act-then-rebase pass so observations
// stay atomic when summaries are read concurrently.
type Session struct {
	mu      sync.Mutex
	cfg     Config
	state   State
	trader  Trader
	gate    *cooldownGate
	ledger  *ledger.Ledger
	journal tradeSink
	logger  *zap.Logger

	reference decimal.Decimal
}

// Option configures optional session collaborators.
type Option func(*Session)

// WithJournal attaches a persistent trade journal.
func WithJournal(journal tradeSink) Option {
	return func(s *Session) {
		s.journal = journal
	}
}

// NewSession creates a session in the Idle state.
func NewSession(cfg Config, trader Trader, logger *zap.Logger, opts ...Option) (*Session, error) {
	if trader == nil {
		return nil, errors.New("trader is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Pair.From == "" || cfg.Pair.To == "" {
		return nil, errors.New("trading pair is required")
	}
	if cfg.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, errors.Errorf("quantity must be positive, got %s", cfg.Quantity.String())
	}

	s := &Session{
		cfg:       cfg,
		state:     StateIdle,
		trader:    trader,
		gate:      newCooldownGate(cfg.Cooldown),
		ledger:    ledger.New(),
		logger:    logger.With(zap.String("pair", cfg.Pair.String())),
		reference: decimal.Zero,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Observe advances the state machine by one price observation.
//
// The branches are evaluated in fixed order: primary buy, primary sell,
// step buy, step sell. Each candidate checks the cooldown gate against
// the latest submission, so at most one order executes per observation.
// A submission failure leaves reference price, cooldown and ledger
// untouched and aborts the pass; the caller continues with the next
// observation.
func (s *Session) Observe(ctx context.Context, price decimal.Decimal, now time.Time) (*domain.TradeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStopped:
		return nil, ErrSessionStopped
	case StateIdle:
		s.reference = price
		s.ledger.SetStartingNotional(price.Mul(s.cfg.Quantity))
		s.state = StateMonitoring
		s.logger.Info("reference price initialized", zap.String("price", price.String()))
		return nil, nil
	}

	deviation := domain.Deviation(s.reference, price, s.cfg.Thresholds.Relative)
	// step thresholds are always percentage-based, even when the
	// primary thresholds are absolute.
	relDeviation := domain.Deviation(s.reference, price, true)

	s.logger.Debug("observation",
		zap.String("price", price.String()),
		zap.String("deviation", deviation.String()))

	var executed *domain.TradeEvent

	if s.cfg.Mode.AllowsBuy() && s.primaryBuyTriggered(price, deviation) {
		event, err := s.tryOrder(ctx, domain.SideBuy, price, now, false)
		if err != nil {
			return nil, err
		}
		if event != nil {
			executed = event
		}
	}

	if s.cfg.Mode.AllowsSell() && s.primarySellTriggered(price, deviation) {
		event, err := s.tryOrder(ctx, domain.SideSell, price, now, false)
		if err != nil {
			return nil, err
		}
		if event != nil {
			executed = event
		}
	}

	if s.cfg.Mode.AllowsBuy() && relDeviation.LessThanOrEqual(s.cfg.Thresholds.StepBuy.Neg()) {
		event, err := s.tryOrder(ctx, domain.SideBuy, price, now, true)
		if err != nil {
			return nil, err
		}
		if event != nil {
			executed = event
		}
	}

	if s.cfg.Mode.AllowsSell() && relDeviation.GreaterThanOrEqual(s.cfg.Thresholds.StepSell) {
		event, err := s.tryOrder(ctx, domain.SideSell, price, now, true)
		if err != nil {
			return nil, err
		}
		if event != nil {
			executed = event
		}
	}

	return executed, nil
}

func (s *Session) primaryBuyTriggered(price, deviation decimal.Decimal) bool {
	if s.cfg.Thresholds.Relative {
		return deviation.LessThanOrEqual(s.cfg.Thresholds.Buy.Neg())
	}
	return price.LessThanOrEqual(s.reference.Sub(s.cfg.Thresholds.Buy))
}

func (s *Session) primarySellTriggered(price, deviation decimal.Decimal) bool {
	if s.cfg.Thresholds.Relative {
		return deviation.GreaterThanOrEqual(s.cfg.Thresholds.Sell)
	}
	return price.GreaterThanOrEqual(s.reference.Add(s.cfg.Thresholds.Sell))
}

// tryOrder submits one candidate order if the cooldown gate permits.
// On success it marks the gate, appends a ledger record and, for
// primary orders only, rebases the reference price to the fill price.
func (s *Session) tryOrder(ctx context.Context, side domain.Side, price decimal.Decimal, now time.Time, step bool) (*domain.TradeEvent, error) {
	if !s.gate.allowed(now) {
		s.logger.Debug("order suppressed by cooldown", zap.String("side", side.String()), zap.Bool("step", step))
		return nil, nil
	}

	clientOrderID := uuid.New().String()
	if err := s.trader.SubmitMarketOrder(ctx, side, s.cfg.Quantity, clientOrderID); err != nil {
		return nil, errors.Wrapf(err, "market %s failed for pair %s, quantity %s",
			side.String(), s.cfg.Pair.String(), s.cfg.Quantity.String())
	}

	s.gate.mark(now)

	record := domain.TradeRecord{
		Side:     side,
		Quantity: s.cfg.Quantity,
		Price:    price,
		Time:     now,
		Profit:   decimal.Zero,
		Loss:     decimal.Zero,
	}
	s.ledger.Record(record)

	if s.journal != nil {
		if err := s.journal.Save(record); err != nil {
			s.logger.Warn("failed to journal trade", zap.Error(err))
		}
	}

	if !step {
		s.reference = price
	}

	event := &domain.TradeEvent{
		Side:     side,
		Pair:     s.cfg.Pair,
		Quantity: s.cfg.Quantity,
		Price:    price,
		Step:     step,
	}

	s.logger.Info("order executed",
		zap.String("side", side.String()),
		zap.Bool("step", step),
		zap.String("price", price.String()),
		zap.String("quantity", s.cfg.Quantity.String()),
		zap.String("reference", s.reference.String()))

	return event, nil
}

// Summary returns a non-destructive snapshot of session statistics.
func (s *Session) Summary() domain.SessionSummary {
	return s.ledger.Summary()
}

// Records returns the trades executed so far, in event order.
func (s *Session) Records() []domain.TradeRecord {
	return s.ledger.Records()
}

// ReferencePrice returns the current deviation baseline.
func (s *Session) ReferencePrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop transitions the session to Stopped and returns final statistics.
// Observing a stopped session returns ErrSessionStopped. Stop is
// idempotent.
func (s *Session) Stop() domain.SessionSummary {
	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	return s.ledger.Summary()
}
