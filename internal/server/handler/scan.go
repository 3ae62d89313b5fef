package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polymirror/internal/pipeline"
)

// Poller runs a single scan cycle on demand.
type Poller interface {
	Poll(ctx context.Context) pipeline.CycleResult
}

// ScanHandler exposes the manual scan trigger.
type ScanHandler struct {
	poller Poller
	logger *slog.Logger
}

// NewScanHandler creates a ScanHandler for the given poller.
func NewScanHandler(poller Poller, logger *slog.Logger) *ScanHandler {
	return &ScanHandler{
		poller: poller,
		logger: logHandler(logger, "scan"),
	}
}

// TriggerScan runs one scan cycle synchronously and returns its outcome. A
// cycle already in flight reports status "skipped".
// POST /api/scan/trigger
func (h *ScanHandler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	result := h.poller.Poll(r.Context())

	h.logger.InfoContext(r.Context(), "manual scan cycle",
		slog.String("status", string(result.Status)),
		slog.Int("trades_found", result.TradesFound),
	)

	status := http.StatusOK
	if result.Status == pipeline.CycleAborted {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}
