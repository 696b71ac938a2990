// Package setup provides the terminal configuration wizard.
package setup

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/varta/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes the
// collected session config to config.gen.yaml.
func RunTUI() error {
	var (
		platform        string
		pair            string
		mode            string
		relative        bool
		pollIntervalStr string
		buyStr          string
		sellStr         string
		stepBuyStr      string
		stepSellStr     string
		quantityStr     string
		webAddr         string
		confirm         bool
	)

	// defaults
	relative = true
	pollIntervalStr = "5s"
	buyStr = "2"
	sellStr = "3"
	stepBuyStr = "5"
	stepSellStr = "7"
	quantityStr = "0.001"

	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Threshold trading, configured step by step.\n"))

	// platform
	fmt.Println(stepStyle.Render("STEP 1: PLATFORM"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select Exchange Platform").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Paper (no credentials)", "paper"),
				).
				Value(&platform),
		),
	).Run()
	if err != nil {
		return err
	}

	// pair
	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ASSET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. BTC_USDT)").
				Value(&pair).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("pair cannot be empty")
					}
					if !strings.Contains(s, "_") {
						return fmt.Errorf("invalid format: must be BASE_QUOTE (e.g. BTC_USDT)")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// mode
	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: TRADE MODE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which sides may the bot trade?").
				Options(
					huh.NewOption("Buy only", "buy"),
					huh.NewOption("Sell only", "sell"),
					huh.NewOption("Mixed", "mixed"),
				).
				Value(&mode),
		),
	).Run()
	if err != nil {
		return err
	}

	// thresholds
	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: THRESHOLDS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Percentage thresholds?").
				Description("Yes: primary thresholds are % of the reference price. No: absolute price deltas. Step thresholds are always %.").
				Affirmative("Percent").
				Negative("Absolute").
				Value(&relative),
			huh.NewInput().
				Title("Buy Threshold").
				Description("Drop that triggers a buy (e.g. 2)").
				Value(&buyStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Sell Threshold").
				Description("Rise that triggers a sell (e.g. 3)").
				Value(&sellStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Step Buy Threshold %").
				Description("Escalation buy trigger, always percent (e.g. 5)").
				Value(&stepBuyStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Step Sell Threshold %").
				Description("Escalation sell trigger, always percent (e.g. 7)").
				Value(&stepSellStr).
				Validate(validateDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	// quantity and timing
	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: SIZE AND TIMING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Quantity").
				Description("Trade size in the base currency, rounded to the instrument precision at start").
				Value(&quantityStr).
				Validate(validateDecimal),
			huh.NewInput().
				Title("Poll Price Interval").
				Description("Duration string (e.g. 5s, 30s, 1m)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
			huh.NewInput().
				Title("Web View Address").
				Description("e.g. :8080, empty disables the web view").
				Value(&webAddr),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	clearScreen()
	fmt.Println(headerStyle.Render("VARTA CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	thresholdUnit := "%"
	if !relative {
		thresholdUnit = " (absolute)"
	}
	summary := fmt.Sprintf(
		"Platform: %s\nPair: %s\nMode: %s\nBuy/Sell: %s/%s%s\nStep Buy/Sell: %s/%s%%\nQuantity: %s\nInterval: %s\n",
		platform, pair, mode, buyStr, sellStr, thresholdUnit, stepBuyStr, stepSellStr, quantityStr, pollIntervalStr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	pollInterval, _ := time.ParseDuration(pollIntervalStr)

	cfgTmp := config.ConfigTmp{
		Platform:           platform,
		Pair:               pair,
		Mode:               mode,
		RelativeThresholds: &relative,
		BuyThreshold:       buyStr,
		SellThreshold:      sellStr,
		StepBuyThreshold:   stepBuyStr,
		StepSellThreshold:  stepSellStr,
		Quantity:           quantityStr,
		PollPriceInterval:  pollInterval,
		WebAddr:            webAddr,
	}

	data, err := yaml.Marshal([]config.ConfigTmp{cfgTmp})
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render("Saved " + filename + ". Start with: varta --config " + filename))
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func validateDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("must be positive")
	}
	return nil
}
