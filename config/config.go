// Package config loads and validates trading session configuration
// from a YAML file or command-line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	defaultPollPriceInterval = 5 * time.Second
	defaultCooldown          = 60 * time.Second
)

// Config is one validated session configuration.
type Config struct {
	Platform           string
	Pair               domain.Pair
	Mode               domain.Mode
	RelativeThresholds bool
	BuyThreshold       decimal.Decimal
	SellThreshold      decimal.Decimal
	StepBuyThreshold   decimal.Decimal
	StepSellThreshold  decimal.Decimal
	Quantity           decimal.Decimal
	PollPriceInterval  time.Duration
	Cooldown           time.Duration
	WebAddr            string
}

// ConfigTmp mirrors the YAML layout; decimal fields are kept as strings
// and parsed during validation.
type ConfigTmp struct {
	Platform           string        `yaml:"platform"`
	Pair               string        `yaml:"pair"`
	Mode               string        `yaml:"mode"`
	RelativeThresholds *bool         `yaml:"relative_thresholds,omitempty"`
	BuyThreshold       string        `yaml:"buy_threshold"`
	SellThreshold      string        `yaml:"sell_threshold"`
	StepBuyThreshold   string        `yaml:"step_buy_threshold"`
	StepSellThreshold  string        `yaml:"step_sell_threshold"`
	Quantity           string        `yaml:"quantity"`
	PollPriceInterval  time.Duration `yaml:"poll_price_interval,omitempty"`
	Cooldown           time.Duration `yaml:"cooldown,omitempty"`
	WebAddr            string        `yaml:"web_addr,omitempty"`
}

// Get loads configuration from --config when provided, falling back to
// the remaining CLI flags.
func Get() ([]Config, error) {
	configPath := flag.String("config", "", "path to yaml config")

	pairFlag := flag.String("pair", "BTC_USDT", "trade pair, example: BTC_USDT")
	platformFlag := flag.String("platform", "paper", "trading platform: binance, bybit or paper")
	modeFlag := flag.String("mode", "mixed", "trade mode: buy, sell or mixed")
	relativeFlag := flag.Bool("relative", true, "thresholds are percentages of the reference price")
	buyFlag := flag.String("buythreshold", "2", "buy threshold")
	sellFlag := flag.String("sellthreshold", "3", "sell threshold")
	stepBuyFlag := flag.String("stepbuythreshold", "5", "step buy threshold (percent)")
	stepSellFlag := flag.String("stepsellthreshold", "7", "step sell threshold (percent)")
	quantityFlag := flag.String("quantity", "0.001", "trade quantity in the base currency")
	pollFlag := flag.Duration("pollpriceinterval", defaultPollPriceInterval, "poll market price interval")
	cooldownFlag := flag.Duration("cooldown", defaultCooldown, "minimum spacing between orders")
	webFlag := flag.String("webaddr", "", "address of the session web view, empty disables it")

	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	tmp := ConfigTmp{
		Platform:           *platformFlag,
		Pair:               *pairFlag,
		Mode:               *modeFlag,
		RelativeThresholds: relativeFlag,
		BuyThreshold:       *buyFlag,
		SellThreshold:      *sellFlag,
		StepBuyThreshold:   *stepBuyFlag,
		StepSellThreshold:  *stepSellFlag,
		Quantity:           *quantityFlag,
		PollPriceInterval:  *pollFlag,
		Cooldown:           *cooldownFlag,
		WebAddr:            *webFlag,
	}

	conf, err := tmp.validate()
	if err != nil {
		return nil, err
	}
	return []Config{conf}, nil
}

func getYaml(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var configsTmp []ConfigTmp
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, err
	}

	configs := make([]Config, 0, len(configsTmp))
	for i, tmp := range configsTmp {
		conf, err := tmp.validate()
		if err != nil {
			return nil, fmt.Errorf("config entry %d: %w", i, err)
		}
		configs = append(configs, conf)
	}
	return configs, nil
}

func (t ConfigTmp) validate() (Config, error) {
	pair, err := PairFromString(t.Pair)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'pair' param: %s, error: %w", t.Pair, err)
	}

	switch t.Platform {
	case "binance", "bybit", "paper":
	default:
		return Config{}, fmt.Errorf("unsupported platform: %q (want binance, bybit or paper)", t.Platform)
	}

	mode, err := domain.ParseMode(t.Mode)
	if err != nil {
		return Config{}, err
	}

	relative := true
	if t.RelativeThresholds != nil {
		relative = *t.RelativeThresholds
	}

	buy, err := parseDecimal("buy_threshold", t.BuyThreshold)
	if err != nil {
		return Config{}, err
	}
	sell, err := parseDecimal("sell_threshold", t.SellThreshold)
	if err != nil {
		return Config{}, err
	}
	stepBuy, err := parseDecimal("step_buy_threshold", t.StepBuyThreshold)
	if err != nil {
		return Config{}, err
	}
	stepSell, err := parseDecimal("step_sell_threshold", t.StepSellThreshold)
	if err != nil {
		return Config{}, err
	}

	// reuse the domain validation so config and engine agree on what a
	// legal threshold set is.
	if _, err := domain.NewThresholds(relative, buy, sell, stepBuy, stepSell); err != nil {
		return Config{}, err
	}

	quantity, err := parseDecimal("quantity", t.Quantity)
	if err != nil {
		return Config{}, err
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("quantity must be positive, got %s", quantity.String())
	}

	pollInterval := t.PollPriceInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollPriceInterval
	}
	cooldown := t.Cooldown
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}

	return Config{
		Platform:           t.Platform,
		Pair:               pair,
		Mode:               mode,
		RelativeThresholds: relative,
		BuyThreshold:       buy,
		SellThreshold:      sell,
		StepBuyThreshold:   stepBuy,
		StepSellThreshold:  stepSell,
		Quantity:           quantity,
		PollPriceInterval:  pollInterval,
		Cooldown:           cooldown,
		WebAddr:            t.WebAddr,
	}, nil
}

func parseDecimal(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("incorrect '%s' param (must be a decimal), error: %w", name, err)
	}
	return d, nil
}

// PairFromString parses a BASE_QUOTE pair string.
func PairFromString(pairStr string) (domain.Pair, error) {
	pairElements := strings.Split(pairStr, "_")
	if len(pairElements) != 2 || pairElements[0] == "" || pairElements[1] == "" {
		return domain.Pair{}, fmt.Errorf("invalid pair param")
	}
	return domain.Pair{From: pairElements[0], To: pairElements[1]}, nil
}
