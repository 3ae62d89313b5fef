package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// ConfigStore provides read and merge-update access to the runtime bot
// configuration.
type ConfigStore interface {
	Config() domain.BotConfig
	UpdateConfig(patch domain.BotConfigPatch) domain.BotConfig
}

// Publisher pushes live events to connected WebSocket clients. A nil
// Publisher disables event publishing.
type Publisher interface {
	Publish(channel string, payload any)
}

// BotConfigHandler serves the runtime bot configuration.
type BotConfigHandler struct {
	store   ConfigStore
	publish Publisher
	logger  *slog.Logger
}

// NewBotConfigHandler creates a BotConfigHandler. publish may be nil.
func NewBotConfigHandler(store ConfigStore, publish Publisher, logger *slog.Logger) *BotConfigHandler {
	return &BotConfigHandler{
		store:   store,
		publish: publish,
		logger:  logHandler(logger, "config"),
	}
}

// GetConfig returns the current runtime bot configuration.
// GET /api/config
func (h *BotConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Config())
}

// UpdateConfig merges a partial configuration patch into the runtime
// configuration. Absent fields keep their current values.
// PATCH /api/config
func (h *BotConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var patch domain.BotConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if patch.TargetWallet != nil && *patch.TargetWallet != "" &&
		!common.IsHexAddress(*patch.TargetWallet) {
		writeError(w, http.StatusBadRequest, "targetWallet is not a valid address")
		return
	}
	if patch.CopyRatio != nil && (*patch.CopyRatio < 0 || *patch.CopyRatio > 1) {
		writeError(w, http.StatusBadRequest, "copyRatio must be in [0, 1]")
		return
	}

	updated := h.store.UpdateConfig(patch)
	h.logger.InfoContext(r.Context(), "bot config updated",
		slog.Bool("is_active", updated.IsActive),
		slog.String("target_wallet", updated.TargetWallet),
	)

	if h.publish != nil {
		h.publish.Publish("config", updated)
	}

	writeJSON(w, http.StatusOK, updated)
}
