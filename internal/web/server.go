// Package web exposes the session state over HTTP: a summary snapshot
// and an SSE stream of executed trades.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vadiminshakov/varta/internal/domain"
	"github.com/vadiminshakov/varta/internal/storage/trades"
)

const tradePollInterval = 2 * time.Second

type summaryReader interface {
	Summary() domain.SessionSummary
}

type tradeReader interface {
	TradesAfter(index uint64) ([]trades.TradeRecordStored, error)
}

// Server exposes HTTP endpoints serving the HTML UI, a summary snapshot
// and an SSE trade stream.
type Server struct {
	Addr    string
	Session summaryReader
	Journal tradeReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, session summaryReader, journal tradeReader) *Server {
	return &Server{Addr: addr, Session: session, Journal: journal}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/summary", s.handleSummary)
	mux.HandleFunc("/trades/stream", s.handleTradeStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.Session == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "session not available")
		return
	}

	summary := s.Session.Summary()
	payload := map[string]any{
		"trades":       summary.Trades,
		"total_bought": summary.TotalBought.String(),
		"total_sold":   summary.TotalSold.String(),
		"total_profit": summary.TotalProfit.String(),
		"total_loss":   summary.TotalLoss.String(),
	}
	if summary.PercentDefined {
		payload["profit_percent"] = summary.ProfitPercent.StringFixed(2)
		payload["loss_percent"] = summary.LossPercent.StringFixed(2)
	} else {
		payload["profit_percent"] = "n/a"
		payload["loss_percent"] = "n/a"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("summary encode: %v", err)
	}
}

func (s *Server) handleTradeStream(w http.ResponseWriter, r *http.Request) {
	if s.Journal == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "trade journal not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(tradePollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendTrades := func() error {
		records, err := s.Journal.TradesAfter(lastIndex)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		for _, record := range records {
			payload, err := json.Marshal(record)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: trade\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendTrades(); err != nil {
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		log.Printf("trade stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendTrades(); err != nil {
				log.Printf("trade stream poll err: %v", err)
			}
		}
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>varta</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; margin: 2em; }
h1 { color: #73F59F; }
table { border-collapse: collapse; margin-top: 1em; }
td, th { border: 1px solid #333; padding: 4px 10px; }
#summary { margin-top: 1em; white-space: pre; }
</style>
</head>
<body>
<h1>varta session</h1>
<div id="summary">loading…</div>
<table>
<thead><tr><th>time</th><th>side</th><th>quantity</th><th>price</th></tr></thead>
<tbody id="trades"></tbody>
</table>
<script>
async function refreshSummary() {
  const res = await fetch('/summary');
  document.getElementById('summary').textContent = JSON.stringify(await res.json(), null, 2);
}
refreshSummary();
setInterval(refreshSummary, 5000);

const source = new EventSource('/trades/stream');
source.addEventListener('trade', (e) => {
  const rec = JSON.parse(e.data);
  const row = document.createElement('tr');
  row.innerHTML = '<td>' + rec.trade.time + '</td><td>' + rec.trade.side + '</td><td>' +
    rec.trade.quantity + '</td><td>' + rec.trade.price + '</td>';
  document.getElementById('trades').prepend(row);
});
</script>
</body>
</html>`
