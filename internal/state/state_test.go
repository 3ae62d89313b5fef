package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

func seedConfig() domain.BotConfig {
	return domain.BotConfig{
		IsActive:      true,
		TargetWallet:  "0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d",
		WalletHistory: []string{"0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d"},
		CopyRatio:     0.1,
		MaxCapUSDC:    500,
	}
}

func trade(id string, side domain.TradeSide, size float64) domain.Trade {
	return domain.Trade{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Side:      side,
		SizeUSDC:  size,
		Price:     0.5,
		TxHash:    id,
		Status:    domain.StatusFilled,
	}
}

func TestNewSeedsStartupLogs(t *testing.T) {
	s := New(seedConfig())
	logs := s.Logs()
	if len(logs) != 2 {
		t.Fatalf("len(Logs()) = %d, want 2 startup lines", len(logs))
	}
	for _, l := range logs {
		if l.ID == "" {
			t.Error("log entry has empty id")
		}
		if l.Level != domain.LevelInfo {
			t.Errorf("startup log level = %q, want info", l.Level)
		}
	}
}

func TestTradesMostRecentFirst(t *testing.T) {
	s := New(seedConfig())
	s.RecordTrade(trade("0x01", domain.SideBuy, 10))
	s.RecordTrade(trade("0x02", domain.SideSell, 20))
	s.RecordTrade(trade("0x03", domain.SideBuy, 30))

	got := s.Trades()
	if len(got) != 3 {
		t.Fatalf("len(Trades()) = %d, want 3", len(got))
	}
	for i, want := range []string{"0x03", "0x02", "0x01"} {
		if got[i].ID != want {
			t.Errorf("Trades()[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestHasTrade(t *testing.T) {
	s := New(seedConfig())
	if s.HasTrade("0x01") {
		t.Error("HasTrade() = true on empty state")
	}
	s.RecordTrade(trade("0x01", domain.SideBuy, 10))
	if !s.HasTrade("0x01") {
		t.Error("HasTrade() = false after RecordTrade")
	}
}

func TestUpdateConfigMergesPatch(t *testing.T) {
	s := New(seedConfig())

	newWallet := "0xABCDEF0000000000000000000000000000000001"
	ratio := 0.25
	got := s.UpdateConfig(domain.BotConfigPatch{
		TargetWallet: &newWallet,
		CopyRatio:    &ratio,
	})

	if got.TargetWallet != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("TargetWallet = %q, want lowercased new wallet", got.TargetWallet)
	}
	if got.CopyRatio != 0.25 {
		t.Errorf("CopyRatio = %v, want 0.25", got.CopyRatio)
	}
	// Untouched fields keep their values.
	if !got.IsActive || got.MaxCapUSDC != 500 {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if len(got.WalletHistory) != 2 || got.WalletHistory[0] != "0xabcdef0000000000000000000000000000000001" {
		t.Errorf("WalletHistory = %v, want new wallet at the front", got.WalletHistory)
	}

	// Config() returns an isolated copy.
	cfg := s.Config()
	cfg.WalletHistory[0] = "mutated"
	if s.Config().WalletHistory[0] == "mutated" {
		t.Error("Config() shares its WalletHistory slice with the state")
	}
}

func TestStats(t *testing.T) {
	s := New(seedConfig())
	s.RecordTrade(trade("0x01", domain.SideBuy, 100))
	s.RecordTrade(trade("0x02", domain.SideSell, 40))
	s.RecordTrade(trade("0x03", domain.SideBuy, 10))

	stats := s.Stats()
	if stats.TotalTrades != 3 {
		t.Errorf("TotalTrades = %d, want 3", stats.TotalTrades)
	}
	if stats.TotalVolume != 150 {
		t.Errorf("TotalVolume = %v, want 150", stats.TotalVolume)
	}
	if stats.BuyCount != 2 || stats.SellCount != 1 {
		t.Errorf("BuyCount/SellCount = %d/%d, want 2/1", stats.BuyCount, stats.SellCount)
	}
	// Buys are outflow, sells inflow: -100 + 40 - 10.
	if stats.NetFlowUSDC != -70 {
		t.Errorf("NetFlowUSDC = %v, want -70", stats.NetFlowUSDC)
	}
	if stats.LastTradeAt.IsZero() {
		t.Error("LastTradeAt is zero")
	}
}

func TestAppendLogTrimsOldEntries(t *testing.T) {
	s := New(seedConfig())
	for i := 0; i < maxLogEntries+50; i++ {
		s.AppendLog(domain.LevelInfo, fmt.Sprintf("line %d", i))
	}

	logs := s.Logs()
	if len(logs) != maxLogEntries {
		t.Fatalf("len(Logs()) = %d, want %d", len(logs), maxLogEntries)
	}
	if got := logs[len(logs)-1].Message; got != fmt.Sprintf("line %d", maxLogEntries+49) {
		t.Errorf("newest log = %q, want the last appended line", got)
	}
}
