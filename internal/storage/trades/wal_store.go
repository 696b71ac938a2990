// Package trades persists executed trades in a write-ahead log so that
// the web UI and post-mortems can replay a session. Durability of the
// journal is a caller concern; the decision engine works without it.
package trades

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/varta/internal/domain"
)

const (
	DefaultDir   = "./wal/trades"
	segmentLimit = 1000
	maxSegments  = 100

	tradeKeyPrefix = "trade_"
)

// TradeRecordStored is a journaled trade with its WAL position.
type TradeRecordStored struct {
	Index uint64             `json:"index"`
	Pair  string             `json:"pair"`
	Trade domain.TradeRecord `json:"trade"`
}

// WALStore persists trade records in a WAL.
type WALStore struct {
	wal  *gowal.Wal
	pair domain.Pair
	mu   sync.RWMutex
}

// NewWALStore initializes a WAL-backed trade journal for a pair. Each
// pair journals into its own subdirectory of dir: WAL indexes are
// per-directory, so two sessions sharing one WAL would overwrite each
// other's entries.
func NewWALStore(dir string, pair domain.Pair) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              filepath.Join(dir, pair.String()),
		Prefix:           "trade_log_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init trade WAL")
	}

	return &WALStore{wal: wal, pair: pair}, nil
}

// Save writes an executed trade to the WAL.
func (s *WALStore) Save(record domain.TradeRecord) error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal trade record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, s.key(), payload)
}

func (s *WALStore) key() string {
	return fmt.Sprintf("%s%s", tradeKeyPrefix, s.pair.String())
}

// TradesAfter returns all trades written after the provided WAL index.
func (s *WALStore) TradesAfter(index uint64) ([]TradeRecordStored, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("trade journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]TradeRecordStored, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}
		// only this store's pair; a journal dir must never leak
		// foreign-pair records into a replay
		if key != s.key() {
			continue
		}

		var trade domain.TradeRecord
		if err := json.Unmarshal(payload, &trade); err != nil {
			return nil, errors.Wrap(err, "decode trade record")
		}

		records = append(records, TradeRecordStored{
			Index: idx,
			Pair:  strings.TrimPrefix(key, tradeKeyPrefix),
			Trade: trade,
		})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("trade journal is not initialized")
	}
	return s.wal.Close()
}
