package domain

import "strings"

// maxWalletHistory bounds the remembered target-wallet list.
const maxWalletHistory = 10

// BotConfig is the runtime bot configuration consumed by the scan coordinator
// and owned by the settings surface. It round-trips through a flat JSON blob,
// so every field carries a JSON tag matching the persisted layout.
type BotConfig struct {
	IsActive          bool     `json:"isActive"`
	TargetWallet      string   `json:"targetWallet"`
	WalletHistory     []string `json:"walletHistory"`
	CopyRatio         float64  `json:"copyRatio"`
	MaxCapUSDC        float64  `json:"maxCapUSDC"`
	SlippageTolerance float64  `json:"slippageTolerance"`
	RPCURL            string   `json:"rpcUrl"`
	PrivateKeyMasked  bool     `json:"privateKeyMasked"`
}

// BotConfigPatch is a partial BotConfig update. Nil fields are left
// untouched: callers may send any subset of fields (merge semantics, not
// replace).
type BotConfigPatch struct {
	IsActive          *bool    `json:"isActive"`
	TargetWallet      *string  `json:"targetWallet"`
	CopyRatio         *float64 `json:"copyRatio"`
	MaxCapUSDC        *float64 `json:"maxCapUSDC"`
	SlippageTolerance *float64 `json:"slippageTolerance"`
	RPCURL            *string  `json:"rpcUrl"`
	PrivateKeyMasked  *bool    `json:"privateKeyMasked"`
}

// Apply merges the patch into cfg. Changing the target wallet pushes the new
// address onto the front of the history list, deduplicated case-insensitively
// and capped at maxWalletHistory entries.
func (p BotConfigPatch) Apply(cfg BotConfig) BotConfig {
	if p.TargetWallet != nil {
		wallet := strings.ToLower(*p.TargetWallet)
		if wallet != strings.ToLower(cfg.TargetWallet) {
			history := make([]string, 0, len(cfg.WalletHistory)+1)
			history = append(history, wallet)
			for _, w := range cfg.WalletHistory {
				if strings.ToLower(w) != wallet {
					history = append(history, w)
				}
			}
			if len(history) > maxWalletHistory {
				history = history[:maxWalletHistory]
			}
			cfg.WalletHistory = history
		}
		cfg.TargetWallet = wallet
	}
	if p.IsActive != nil {
		cfg.IsActive = *p.IsActive
	}
	if p.CopyRatio != nil {
		cfg.CopyRatio = *p.CopyRatio
	}
	if p.MaxCapUSDC != nil {
		cfg.MaxCapUSDC = *p.MaxCapUSDC
	}
	if p.SlippageTolerance != nil {
		cfg.SlippageTolerance = *p.SlippageTolerance
	}
	if p.RPCURL != nil {
		cfg.RPCURL = *p.RPCURL
	}
	if p.PrivateKeyMasked != nil {
		cfg.PrivateKeyMasked = *p.PrivateKeyMasked
	}
	return cfg
}
