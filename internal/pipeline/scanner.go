package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/platform/evm"
)

const (
	// DefaultLookback is how far behind the chain head the cursor starts on
	// the first poll.
	DefaultLookback uint64 = 20

	// DefaultMaxWindow bounds a single eth_getLogs range regardless of how
	// long polling was paused.
	DefaultMaxWindow uint64 = 50
)

// CycleStatus is the outcome of one poll cycle.
type CycleStatus string

const (
	CycleCompleted CycleStatus = "completed"
	CycleSkipped   CycleStatus = "skipped"
	CycleAborted   CycleStatus = "aborted"
)

// CycleResult is the typed outcome returned to the scheduler. Errors abort
// the cycle but never propagate past the scanner boundary; the reason is
// carried here and logged instead.
type CycleResult struct {
	Status      CycleStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	FromBlock   uint64      `json:"fromBlock,omitempty"`
	ToBlock     uint64      `json:"toBlock,omitempty"`
	LogsScanned int         `json:"logsScanned"`
	TradesFound int         `json:"tradesFound"`
	Err         error       `json:"-"`
}

// ScanStatus is a snapshot of cursor health for the status surface. A
// LastProcessedBlock that stops advancing while ChainHeight grows is the key
// stall signal.
type ScanStatus struct {
	LastProcessedBlock uint64      `json:"lastProcessedBlock"`
	ChainHeight        uint64      `json:"chainHeight"`
	LastCycleStatus    CycleStatus `json:"lastCycleStatus,omitempty"`
	LastCycleAt        time.Time   `json:"lastCycleAt"`
}

// ChainReader is the slice of the ledger client the scanner needs.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q evm.FilterQuery) ([]evm.Log, error)
}

// Resolver maps an asset id to market metadata, degrading to sentinel values
// on failure.
type Resolver interface {
	Resolve(ctx context.Context, assetID string) domain.MarketMetadata
}

// StateStore is the shared scan state the coordinator reads and writes. The
// scanner is the only trade/log writer.
type StateStore interface {
	Config() domain.BotConfig
	HasTrade(id string) bool
	RecordTrade(trade domain.Trade)
	AppendLog(level domain.LogLevel, message string)
}

// DialFunc constructs a ChainReader for an RPC endpoint. The scanner re-reads
// the endpoint from BotConfig each cycle, so operators can repoint the node
// without a restart.
type DialFunc func(endpoint string) ChainReader

// Config holds the fixed scan parameters.
type Config struct {
	Exchange        common.Address // exchange contract emitting fill events
	FillTopic       common.Hash    // event signature topic to filter on
	DefaultEndpoint string         // used when BotConfig carries no rpcUrl
	Lookback        uint64
	MaxWindow       uint64
}

// Scanner owns the advancing block-range cursor and drives one poll cycle:
// fetch height, query fill logs, decode, classify against the tracked
// wallet, dedup, resolve metadata, and record trades. Cycles are
// single-flight; an overlapping Poll returns a skipped result.
type Scanner struct {
	cfg      Config
	dial     DialFunc
	resolver Resolver
	state    StateStore
	logger   *slog.Logger

	onTrade func(domain.Trade)
	onCycle func(CycleResult)

	scanning atomic.Bool

	// Cursor and chain snapshot. Guarded by mu: Poll is single-flight but
	// Status is read concurrently by the HTTP surface.
	mu          sync.Mutex
	cursor      uint64
	cursorSet   bool
	lastHeight  uint64
	lastCycle   CycleStatus
	lastCycleAt time.Time

	endpoint string
	chain    ChainReader
}

// NewScanner creates a Scanner. Zero Lookback/MaxWindow fall back to the
// defaults.
func NewScanner(cfg Config, dial DialFunc, resolver Resolver, state StateStore, logger *slog.Logger) *Scanner {
	if cfg.Lookback == 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.MaxWindow == 0 {
		cfg.MaxWindow = DefaultMaxWindow
	}
	return &Scanner{
		cfg:      cfg,
		dial:     dial,
		resolver: resolver,
		state:    state,
		logger:   logger.With(slog.String("component", "scanner")),
	}
}

// OnTrade registers a callback invoked for every newly recorded trade. Must
// be set before the first Poll.
func (s *Scanner) OnTrade(fn func(domain.Trade)) { s.onTrade = fn }

// OnCycle registers a callback invoked with every non-skipped cycle result.
// Must be set before the first Poll.
func (s *Scanner) OnCycle(fn func(CycleResult)) { s.onCycle = fn }

// Status returns the current cursor-health snapshot.
func (s *Scanner) Status() ScanStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScanStatus{
		LastProcessedBlock: s.cursor,
		ChainHeight:        s.lastHeight,
		LastCycleStatus:    s.lastCycle,
		LastCycleAt:        s.lastCycleAt,
	}
}

// Poll runs one scan cycle. It never returns an error to the caller: RPC and
// decode failures abort the cycle without advancing the cursor (the next
// cycle retries the same range) and are reported inside the CycleResult and
// the state log.
func (s *Scanner) Poll(ctx context.Context) CycleResult {
	if !s.scanning.CompareAndSwap(false, true) {
		return s.finish(CycleResult{Status: CycleSkipped, Reason: "cycle already in flight"})
	}
	defer s.scanning.Store(false)

	cfg := s.state.Config()
	if !cfg.IsActive {
		return s.finish(CycleResult{Status: CycleSkipped, Reason: "bot inactive"})
	}
	if cfg.TargetWallet == "" {
		return s.finish(CycleResult{Status: CycleSkipped, Reason: "no target wallet configured"})
	}
	target := common.HexToAddress(cfg.TargetWallet)

	chain := s.chainFor(cfg.RPCURL)

	height, err := chain.BlockNumber(ctx)
	if err != nil {
		return s.abort("fetch chain height", err)
	}
	s.mu.Lock()
	s.lastHeight = height
	if !s.cursorSet {
		start := uint64(0)
		if height > s.cfg.Lookback {
			start = height - s.cfg.Lookback
		}
		s.cursor = start
		s.cursorSet = true
		s.logger.Info("cursor initialized",
			slog.Uint64("cursor", start),
			slog.Uint64("height", height),
		)
	}
	cursor := s.cursor
	s.mu.Unlock()

	if height <= cursor {
		return s.finish(CycleResult{Status: CycleSkipped, Reason: "no new blocks"})
	}

	from := cursor
	if height > s.cfg.MaxWindow && height-s.cfg.MaxWindow > from {
		from = height - s.cfg.MaxWindow
	}

	logs, err := chain.FilterLogs(ctx, evm.FilterQuery{
		FromBlock: from,
		ToBlock:   height,
		Address:   s.cfg.Exchange,
		Topics:    []common.Hash{s.cfg.FillTopic},
	})
	if err != nil {
		return s.abort(fmt.Sprintf("query logs [%d, %d]", from, height), err)
	}

	trades := 0
	for _, raw := range logs {
		fill, err := DecodeFill(raw)
		if err != nil {
			// Schema mismatch on a topic-filtered log is an invariant
			// violation: log loudly and retry the range next cycle.
			return s.abort("decode fill log", err)
		}

		classified, involved, err := Classify(fill, target)
		if err != nil {
			s.logger.Warn("skipping degenerate fill",
				slog.String("tx_hash", fill.TxHash.Hex()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !involved {
			continue
		}

		txHash := classified.TxHash.Hex()
		if s.state.HasTrade(txHash) {
			continue
		}

		md := s.resolver.Resolve(ctx, classified.AssetID)

		trade := domain.Trade{
			ID:             txHash,
			Timestamp:      time.Now().UTC(),
			MarketQuestion: md.Question,
			Outcome:        md.Outcome,
			Side:           classified.Side,
			SizeUSDC:       classified.SizeUSDC,
			Price:          classified.Price,
			TxHash:         txHash,
			Status:         domain.StatusFilled,
		}
		s.state.RecordTrade(trade)
		s.state.AppendLog(domain.LevelWarn, fmt.Sprintf(
			"whale fill: target %s %s %.2f USDC @ %.4f (%s)",
			shortAddress(cfg.TargetWallet), trade.Side, trade.SizeUSDC, trade.Price, md.Question,
		))
		if s.onTrade != nil {
			s.onTrade(trade)
		}
		trades++
	}

	s.mu.Lock()
	s.cursor = height + 1
	s.mu.Unlock()

	result := CycleResult{
		Status:      CycleCompleted,
		FromBlock:   from,
		ToBlock:     height,
		LogsScanned: len(logs),
		TradesFound: trades,
	}
	s.logger.Debug("cycle completed",
		slog.Uint64("from", from),
		slog.Uint64("to", height),
		slog.Int("logs", len(logs)),
		slog.Int("trades", trades),
	)
	return s.finish(result)
}

// RunLoop drives Poll on a repeating interval until the context is
// cancelled. It polls immediately on start.
func (s *Scanner) RunLoop(ctx context.Context, interval time.Duration) error {
	s.Poll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// chainFor returns a ChainReader for the configured endpoint, re-dialing only
// when the endpoint changed since the previous cycle.
func (s *Scanner) chainFor(endpoint string) ChainReader {
	if endpoint == "" {
		endpoint = s.cfg.DefaultEndpoint
	}
	if s.chain == nil || endpoint != s.endpoint {
		s.chain = s.dial(endpoint)
		s.endpoint = endpoint
	}
	return s.chain
}

// abort records a failed cycle: ERROR log line, cursor untouched, error
// swallowed at this boundary so the scheduler's timer keeps running.
func (s *Scanner) abort(op string, err error) CycleResult {
	s.logger.Error("cycle aborted",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	s.state.AppendLog(domain.LevelError, fmt.Sprintf("scan aborted: %s: %v", op, err))
	return s.finish(CycleResult{Status: CycleAborted, Reason: op, Err: err})
}

// finish stamps bookkeeping shared by every cycle exit path.
func (s *Scanner) finish(r CycleResult) CycleResult {
	s.mu.Lock()
	s.lastCycle = r.Status
	s.lastCycleAt = time.Now().UTC()
	s.mu.Unlock()
	if s.onCycle != nil && r.Status != CycleSkipped {
		s.onCycle(r)
	}
	return r
}

// shortAddress truncates a wallet address for log lines.
func shortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8]
}
