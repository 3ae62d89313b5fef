package domain

import "time"

// BotStats is the derived dashboard statistics snapshot computed from the
// recorded trade list.
type BotStats struct {
	TotalTrades int       `json:"totalTrades"`
	TotalVolume float64   `json:"totalVolume"`
	BuyCount    int       `json:"buyCount"`
	SellCount   int       `json:"sellCount"`
	NetFlowUSDC float64   `json:"netFlowUSDC"`
	LastTradeAt time.Time `json:"lastTradeAt"`
	LastPing    time.Time `json:"lastPing"`
}
