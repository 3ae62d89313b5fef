// Package state holds the shared scan state: recorded trades, the engine log
// feed, and the runtime bot configuration. One ScanState instance is owned by
// the application and passed to the coordinator and the HTTP surface; there
// are no package-level globals.
package state

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// maxLogEntries bounds the in-memory log feed; the oldest lines are dropped
// first.
const maxLogEntries = 500

// ScanState is the mutable state shared between the scan coordinator (sole
// trade/log writer) and the read-only API surface. Safe for concurrent use.
type ScanState struct {
	mu     sync.RWMutex
	trades []domain.Trade // append order; most-recent-last internally
	logs   []domain.LogEntry
	cfg    domain.BotConfig
}

// New creates a ScanState seeded with the given bot configuration and the
// initial engine log lines.
func New(cfg domain.BotConfig) *ScanState {
	s := &ScanState{cfg: cfg}
	s.AppendLog(domain.LevelInfo, "engine online")
	s.AppendLog(domain.LevelInfo, "syncing live blockchain feeds")
	return s
}

// Config returns a copy of the current bot configuration.
func (s *ScanState) Config() domain.BotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg := s.cfg
	cfg.WalletHistory = append([]string(nil), s.cfg.WalletHistory...)
	return cfg
}

// UpdateConfig merges a partial patch into the bot configuration and returns
// the result. Absent fields keep their current values.
func (s *ScanState) UpdateConfig(patch domain.BotConfigPatch) domain.BotConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = patch.Apply(s.cfg)
	cfg := s.cfg
	cfg.WalletHistory = append([]string(nil), s.cfg.WalletHistory...)
	return cfg
}

// HasTrade reports whether a trade with the given id (transaction hash) has
// already been recorded.
func (s *ScanState) HasTrade(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.trades {
		if s.trades[i].ID == id {
			return true
		}
	}
	return false
}

// RecordTrade appends a confirmed trade. Trades are append-only and never
// mutated after creation.
func (s *ScanState) RecordTrade(trade domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, trade)
}

// Trades returns the recorded trades, most recent first.
func (s *ScanState) Trades() []domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trade, len(s.trades))
	for i := range s.trades {
		out[len(s.trades)-1-i] = s.trades[i]
	}
	return out
}

// AppendLog appends one line to the engine log feed, trimming the oldest
// entries past the retention bound.
func (s *ScanState) AppendLog(level domain.LogLevel, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, domain.LogEntry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
	})
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[len(s.logs)-maxLogEntries:]
	}
}

// Logs returns the engine log feed in append order.
func (s *ScanState) Logs() []domain.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.LogEntry(nil), s.logs...)
}

// Stats computes the derived dashboard statistics from the recorded trades.
func (s *ScanState) Stats() domain.BotStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.BotStats{
		TotalTrades: len(s.trades),
		LastPing:    time.Now().UTC(),
	}
	for i := range s.trades {
		t := &s.trades[i]
		stats.TotalVolume += t.SizeUSDC
		switch t.Side {
		case domain.SideBuy:
			stats.BuyCount++
			stats.NetFlowUSDC -= t.SizeUSDC
		case domain.SideSell:
			stats.SellCount++
			stats.NetFlowUSDC += t.SizeUSDC
		}
		if t.Timestamp.After(stats.LastTradeAt) {
			stats.LastTradeAt = t.Timestamp
		}
	}
	return stats
}
