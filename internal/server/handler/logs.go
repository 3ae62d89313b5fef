package handler

import (
	"log/slog"
	"net/http"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// LogSource provides read access to the engine log feed.
type LogSource interface {
	Logs() []domain.LogEntry
}

// LogHandler serves the engine log feed.
type LogHandler struct {
	source LogSource
	logger *slog.Logger
}

// NewLogHandler creates a LogHandler backed by the given source.
func NewLogHandler(source LogSource, logger *slog.Logger) *LogHandler {
	return &LogHandler{
		source: source,
		logger: logHandler(logger, "logs"),
	}
}

// ListLogs returns engine log lines, most recent first, with pagination.
// GET /api/logs?limit=&offset=
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	entries := h.source.Logs()
	total := len(entries)

	// Reverse so the newest line comes first.
	reversed := make([]domain.LogEntry, total)
	for i := range entries {
		reversed[total-1-i] = entries[i]
	}

	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"logs":   reversed[start:end],
		"total":  total,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})
}
