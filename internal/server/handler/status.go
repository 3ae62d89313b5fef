package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/pipeline"
)

// StatsSource computes the derived dashboard statistics.
type StatsSource interface {
	Stats() domain.BotStats
}

// ScanSource reports the scan coordinator's cursor and last-cycle state.
type ScanSource interface {
	Status() pipeline.ScanStatus
}

// StatusHandler serves the combined engine status snapshot.
type StatusHandler struct {
	stats     StatsSource
	scan      ScanSource
	mode      string
	startedAt time.Time
	logger    *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(stats StatsSource, scan ScanSource, mode string, startedAt time.Time, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		stats:     stats,
		scan:      scan,
		mode:      mode,
		startedAt: startedAt,
		logger:    logHandler(logger, "status"),
	}
}

// GetStatus returns trade statistics plus the scan cursor state.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":           h.mode,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"stats":          h.stats.Stats(),
		"scan":           h.scan.Status(),
	})
}
