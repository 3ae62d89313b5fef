package domain

import "time"

// TradeSide indicates whether the tracked wallet was buying or selling
// outcome shares.
type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

// TradeStatus is the settlement state of a recorded trade. Trades discovered
// from on-chain fills are always FILLED; PENDING and FAILED exist for mirror
// executions recorded by external surfaces.
type TradeStatus string

const (
	StatusFilled  TradeStatus = "FILLED"
	StatusPending TradeStatus = "PENDING"
	StatusFailed  TradeStatus = "FAILED"
)

// Trade is a confirmed, user-facing record of one whale fill. The ID is the
// transaction hash, which is also the deduplication key: exactly one Trade
// exists per distinct transaction. Trades are append-only and never mutated
// after creation.
type Trade struct {
	ID             string      `json:"id"`
	Timestamp      time.Time   `json:"timestamp"`
	MarketQuestion string      `json:"marketQuestion"`
	Outcome        string      `json:"outcome"`
	Side           TradeSide   `json:"side"`
	SizeUSDC       float64     `json:"sizeUSDC"`
	Price          float64     `json:"price"`
	TxHash         string      `json:"txHash"`
	Status         TradeStatus `json:"status"`
}
