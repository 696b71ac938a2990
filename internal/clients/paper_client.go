package clients

import (
	"github.com/adshao/go-binance/v2"
)

// PaperClient wraps an unauthenticated Binance client used as the price
// and instrument-rules source for paper trading sessions.
type PaperClient struct {
	binanceClient *binance.Client
}

func NewPaperClient() *PaperClient {
	return &PaperClient{binanceClient: binance.NewClient("", "")}
}

// GetBinanceClient returns the underlying market-data client.
func (c *PaperClient) GetBinanceClient() *binance.Client {
	return c.binanceClient
}
