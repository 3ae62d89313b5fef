// Package config defines the top-level configuration for the polymirror
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by POLYMIRROR_* environment
// variables.
type Config struct {
	Chain    ChainConfig  `toml:"chain"`
	Gamma    GammaConfig  `toml:"gamma"`
	Bot      BotConfig    `toml:"bot"`
	Cache    CacheConfig  `toml:"cache"`
	Redis    RedisConfig  `toml:"redis"`
	Notify   NotifyConfig `toml:"notify"`
	Server   ServerConfig `toml:"server"`
	Mode     string       `toml:"mode"`
	LogLevel string       `toml:"log_level"`
}

// ChainConfig holds ledger node and scan parameters.
type ChainConfig struct {
	RPCURL          string   `toml:"rpc_url"`
	ChainID         int      `toml:"chain_id"`
	ExchangeAddress string   `toml:"exchange_address"`
	FillEventTopic  string   `toml:"fill_event_topic"`
	LookbackBlocks  uint64   `toml:"lookback_blocks"`
	MaxWindowBlocks uint64   `toml:"max_window_blocks"`
	PollInterval    duration `toml:"poll_interval"`
	RPCTimeout      duration `toml:"rpc_timeout"`
}

// GammaConfig holds the market metadata API endpoint.
type GammaConfig struct {
	Host string `toml:"host"`
}

// BotConfig seeds the runtime bot settings; after startup they live in the
// scan state and are mutated only through the settings surface.
type BotConfig struct {
	Active            bool    `toml:"active"`
	TargetWallet      string  `toml:"target_wallet"`
	CopyRatio         float64 `toml:"copy_ratio"`
	MaxCapUSDC        float64 `toml:"max_cap_usdc"`
	SlippageTolerance float64 `toml:"slippage_tolerance"`
}

// CacheConfig selects and sizes the metadata cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"` // "memory" or "redis"
	Capacity int      `toml:"capacity"`
	RedisTTL duration `toml:"redis_ttl"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values for
// the Polygon CTF exchange deployment.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:          "https://polygon-rpc.com",
			ChainID:         137,
			ExchangeAddress: "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E",
			FillEventTopic:  "0x367819359e75e3532e2174f05537c9e13e43073e047f9e1f3768ba95139a130e",
			LookbackBlocks:  20,
			MaxWindowBlocks: 50,
			PollInterval:    duration{15 * time.Second},
			RPCTimeout:      duration{10 * time.Second},
		},
		Gamma: GammaConfig{
			Host: "https://gamma-api.polymarket.com",
		},
		Bot: BotConfig{
			Active:            true,
			TargetWallet:      "0x6031b6eed1c97e853c6e0f03ad3ce3529351f96d",
			CopyRatio:         0.1,
			MaxCapUSDC:        500,
			SlippageTolerance: 0.05,
		},
		Cache: CacheConfig{
			Backend:  "memory",
			Capacity: 100,
			RedisTTL: duration{24 * time.Hour},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Notify: NotifyConfig{
			Events: []string{"whale_trade", "scan_aborted"},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validCacheBackends enumerates the accepted values for Cache.Backend.
var validCacheBackends = map[string]bool{
	"memory": true,
	"redis":  true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Chain
	if c.Chain.RPCURL == "" {
		errs = append(errs, "chain: rpc_url must not be empty")
	}
	if c.Chain.ChainID <= 0 {
		errs = append(errs, "chain: chain_id must be positive")
	}
	if !common.IsHexAddress(c.Chain.ExchangeAddress) {
		errs = append(errs, fmt.Sprintf("chain: exchange_address %q is not a valid address", c.Chain.ExchangeAddress))
	}
	if len(c.Chain.FillEventTopic) != 66 || !strings.HasPrefix(c.Chain.FillEventTopic, "0x") {
		errs = append(errs, "chain: fill_event_topic must be a 0x-prefixed 32-byte hash")
	}
	if c.Chain.LookbackBlocks == 0 {
		errs = append(errs, "chain: lookback_blocks must be >= 1")
	}
	if c.Chain.MaxWindowBlocks == 0 {
		errs = append(errs, "chain: max_window_blocks must be >= 1")
	}
	if c.Chain.PollInterval.Duration <= 0 {
		errs = append(errs, "chain: poll_interval must be > 0")
	}

	// Gamma
	if c.Gamma.Host == "" {
		errs = append(errs, "gamma: host must not be empty")
	}

	// Bot
	if c.Bot.TargetWallet != "" && !common.IsHexAddress(c.Bot.TargetWallet) {
		errs = append(errs, fmt.Sprintf("bot: target_wallet %q is not a valid address", c.Bot.TargetWallet))
	}
	if c.Bot.CopyRatio < 0 || c.Bot.CopyRatio > 1 {
		errs = append(errs, "bot: copy_ratio must be in [0, 1]")
	}

	// Cache
	if !validCacheBackends[strings.ToLower(c.Cache.Backend)] {
		errs = append(errs, fmt.Sprintf("cache: unknown backend %q (valid: memory, redis)", c.Cache.Backend))
	}
	if c.Cache.Capacity < 1 {
		errs = append(errs, "cache: capacity must be >= 1")
	}
	if strings.ToLower(c.Cache.Backend) == "redis" {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when cache.backend is redis")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// SeedBotConfig converts the static bot section into the runtime BotConfig
// held by the scan state.
func (c *Config) SeedBotConfig() domain.BotConfig {
	wallet := strings.ToLower(c.Bot.TargetWallet)
	var history []string
	if wallet != "" {
		history = []string{wallet}
	}
	return domain.BotConfig{
		IsActive:          c.Bot.Active,
		TargetWallet:      wallet,
		WalletHistory:     history,
		CopyRatio:         c.Bot.CopyRatio,
		MaxCapUSDC:        c.Bot.MaxCapUSDC,
		SlippageTolerance: c.Bot.SlippageTolerance,
		RPCURL:            c.Chain.RPCURL,
		PrivateKeyMasked:  true,
	}
}
