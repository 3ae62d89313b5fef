package pipeline

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/platform/evm"
	"github.com/alanyoungcy/polymirror/internal/state"
)

type fakeChain struct {
	height    uint64
	heightErr error
	logs      []evm.Log
	logsErr   error
	queries   []evm.FilterQuery
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) {
	if f.heightErr != nil {
		return 0, f.heightErr
	}
	return f.height, nil
}

func (f *fakeChain) FilterLogs(_ context.Context, q evm.FilterQuery) ([]evm.Log, error) {
	f.queries = append(f.queries, q)
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs, nil
}

type fakeResolver struct{}

func (fakeResolver) Resolve(_ context.Context, assetID string) domain.MarketMetadata {
	return domain.MarketMetadata{AssetID: assetID, Question: "Will it rain?", Outcome: "Yes"}
}

func newTestScanner(t *testing.T, chain *fakeChain) (*Scanner, *state.ScanState) {
	t.Helper()
	st := state.New(domain.BotConfig{
		IsActive:     true,
		TargetWallet: targetAddr.Hex(),
	})
	sc := NewScanner(Config{
		Exchange:  common.HexToAddress("0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"),
		FillTopic: common.HexToHash("0x367819359e75e3532e2174f05537c9e13e43073e047f9e1f3768ba95139a130e"),
		Lookback:  20,
		MaxWindow: 50,
	}, func(string) ChainReader { return chain }, fakeResolver{}, st, discardLogger())
	return sc, st
}

func TestScannerCursorInitAndAdvance(t *testing.T) {
	chain := &fakeChain{height: 100}
	sc, _ := newTestScanner(t, chain)

	res := sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q (%s), want completed", res.Status, res.Reason)
	}
	if res.FromBlock != 80 || res.ToBlock != 100 {
		t.Errorf("scanned [%d, %d], want [80, 100]", res.FromBlock, res.ToBlock)
	}

	st := sc.Status()
	if st.LastProcessedBlock != 101 {
		t.Errorf("LastProcessedBlock = %d, want 101 (height+1)", st.LastProcessedBlock)
	}
	if st.ChainHeight != 100 {
		t.Errorf("ChainHeight = %d, want 100", st.ChainHeight)
	}

	// No new blocks: the cycle is a skip and the cursor holds.
	res = sc.Poll(context.Background())
	if res.Status != CycleSkipped {
		t.Fatalf("Poll() status = %q, want skipped", res.Status)
	}
	if got := sc.Status().LastProcessedBlock; got != 101 {
		t.Errorf("LastProcessedBlock after skip = %d, want 101", got)
	}
}

func TestScannerWindowBound(t *testing.T) {
	chain := &fakeChain{height: 100}
	sc, _ := newTestScanner(t, chain)

	sc.Poll(context.Background()) // cursor -> 101

	// A long pause: the window must be clamped to the trailing maxWindow
	// blocks rather than scanning the whole gap.
	chain.height = 1000
	res := sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q, want completed", res.Status)
	}
	if res.FromBlock != 950 || res.ToBlock != 1000 {
		t.Errorf("scanned [%d, %d], want [950, 1000]", res.FromBlock, res.ToBlock)
	}
}

func TestScannerAbortKeepsCursor(t *testing.T) {
	chain := &fakeChain{height: 100}
	sc, _ := newTestScanner(t, chain)

	sc.Poll(context.Background()) // cursor -> 101

	chain.height = 200
	chain.logsErr = errors.New("rpc: connection refused")
	res := sc.Poll(context.Background())
	if res.Status != CycleAborted {
		t.Fatalf("Poll() status = %q, want aborted", res.Status)
	}
	if got := sc.Status().LastProcessedBlock; got != 101 {
		t.Errorf("LastProcessedBlock after abort = %d, want 101 (unchanged)", got)
	}

	// Recovery: the next cycle retries from the held cursor, window-bounded.
	chain.logsErr = nil
	res = sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q, want completed", res.Status)
	}
	if res.FromBlock != 150 || res.ToBlock != 200 {
		t.Errorf("scanned [%d, %d], want [150, 200]", res.FromBlock, res.ToBlock)
	}
}

func TestScannerRecordsAndDedupsTrades(t *testing.T) {
	log := fillLog(targetAddr, otherAddr, big.NewInt(0), big.NewInt(77),
		big.NewInt(1_000_000), big.NewInt(2_000_000_000_000))

	chain := &fakeChain{height: 100, logs: []evm.Log{log}}
	sc, st := newTestScanner(t, chain)

	res := sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q, want completed", res.Status)
	}
	if res.TradesFound != 1 {
		t.Fatalf("TradesFound = %d, want 1", res.TradesFound)
	}

	trades := st.Trades()
	if len(trades) != 1 {
		t.Fatalf("recorded %d trades, want 1", len(trades))
	}
	trade := trades[0]
	if trade.Side != domain.SideBuy {
		t.Errorf("Side = %q, want BUY", trade.Side)
	}
	if trade.SizeUSDC != 1.00 || trade.Price != 0.5 {
		t.Errorf("SizeUSDC=%v Price=%v, want 1.00 and 0.5", trade.SizeUSDC, trade.Price)
	}
	if trade.MarketQuestion != "Will it rain?" || trade.Outcome != "Yes" {
		t.Errorf("metadata = %q/%q, want resolved question and outcome", trade.MarketQuestion, trade.Outcome)
	}
	if trade.ID != log.TransactionHash.Hex() {
		t.Errorf("ID = %q, want tx hash %q", trade.ID, log.TransactionHash.Hex())
	}

	// The same fill showing up again in an overlapping window must not be
	// recorded twice.
	chain.height = 150
	res = sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q, want completed", res.Status)
	}
	if res.TradesFound != 0 {
		t.Errorf("TradesFound on replay = %d, want 0", res.TradesFound)
	}
	if got := len(st.Trades()); got != 1 {
		t.Errorf("recorded %d trades after replay, want 1", got)
	}
}

func TestScannerSkipsUninvolvedAndDegenerateFills(t *testing.T) {
	uninvolved := fillLog(otherAddr, otherAddr, big.NewInt(0), big.NewInt(5),
		big.NewInt(1_000_000), big.NewInt(1_000_000_000_000))
	degenerate := fillLog(targetAddr, otherAddr, big.NewInt(0), big.NewInt(5),
		big.NewInt(0), big.NewInt(1_000_000_000_000))
	good := fillLog(targetAddr, otherAddr, big.NewInt(0), big.NewInt(77),
		big.NewInt(2_000_000), big.NewInt(2_000_000_000_000))
	good.TransactionHash = common.HexToHash("0xbeef")

	chain := &fakeChain{height: 100, logs: []evm.Log{uninvolved, degenerate, good}}
	sc, st := newTestScanner(t, chain)

	res := sc.Poll(context.Background())
	if res.Status != CycleCompleted {
		t.Fatalf("Poll() status = %q, want completed (degenerate fills skip, not abort)", res.Status)
	}
	if res.LogsScanned != 3 {
		t.Errorf("LogsScanned = %d, want 3", res.LogsScanned)
	}
	if res.TradesFound != 1 {
		t.Errorf("TradesFound = %d, want 1", res.TradesFound)
	}
	if got := len(st.Trades()); got != 1 {
		t.Errorf("recorded %d trades, want 1", got)
	}
}

func TestScannerDecodeErrorAborts(t *testing.T) {
	bad := fillLog(targetAddr, otherAddr, big.NewInt(0), big.NewInt(77),
		big.NewInt(1_000_000), big.NewInt(2_000_000_000_000))
	bad.Data = hexutil.Bytes(bad.Data[:64])

	chain := &fakeChain{height: 100, logs: []evm.Log{bad}}
	sc, st := newTestScanner(t, chain)

	res := sc.Poll(context.Background())
	if res.Status != CycleAborted {
		t.Fatalf("Poll() status = %q, want aborted on schema mismatch", res.Status)
	}
	var de *DecodeError
	if !errors.As(res.Err, &de) {
		t.Errorf("CycleResult.Err = %v, want *DecodeError", res.Err)
	}
	if got := len(st.Trades()); got != 0 {
		t.Errorf("recorded %d trades, want 0", got)
	}
	// Cursor stays at the lazily initialized value so the range is retried.
	if got := sc.Status().LastProcessedBlock; got != 80 {
		t.Errorf("LastProcessedBlock = %d, want 80", got)
	}
}

func TestScannerInactiveConfigSkips(t *testing.T) {
	chain := &fakeChain{height: 100}
	sc, st := newTestScanner(t, chain)

	inactive := false
	st.UpdateConfig(domain.BotConfigPatch{IsActive: &inactive})

	res := sc.Poll(context.Background())
	if res.Status != CycleSkipped {
		t.Fatalf("Poll() status = %q, want skipped while inactive", res.Status)
	}
	if len(chain.queries) != 0 {
		t.Errorf("FilterLogs called %d times while inactive, want 0", len(chain.queries))
	}
}

func TestScannerHeightErrorAborts(t *testing.T) {
	chain := &fakeChain{heightErr: errors.New("rpc: timeout")}
	sc, _ := newTestScanner(t, chain)

	res := sc.Poll(context.Background())
	if res.Status != CycleAborted {
		t.Fatalf("Poll() status = %q, want aborted", res.Status)
	}
}

func TestScannerCycleCallback(t *testing.T) {
	chain := &fakeChain{height: 100}
	sc, _ := newTestScanner(t, chain)

	var statuses []CycleStatus
	sc.OnCycle(func(r CycleResult) { statuses = append(statuses, r.Status) })

	sc.Poll(context.Background()) // completed
	sc.Poll(context.Background()) // skipped (no new blocks): callback must not fire
	chain.heightErr = errors.New("down")
	sc.Poll(context.Background()) // aborted

	want := []CycleStatus{CycleCompleted, CycleAborted}
	if len(statuses) != len(want) {
		t.Fatalf("callback fired %d times (%v), want %v", len(statuses), statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("callback[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
}
