package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// TradeSource provides read access to the recorded whale trades.
type TradeSource interface {
	Trades() []domain.Trade
}

// TradeHandler serves the detected whale trades.
type TradeHandler struct {
	source TradeSource
	logger *slog.Logger
}

// NewTradeHandler creates a TradeHandler backed by the given source.
func NewTradeHandler(source TradeSource, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{
		source: source,
		logger: logHandler(logger, "trades"),
	}
}

// ListTrades returns recorded trades, most recent first, with pagination.
// GET /api/trades?limit=&offset=
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	trades := h.source.Trades()
	total := len(trades)

	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades[start:end],
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}
