package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the runtime configuration. Order of precedence, lowest to
// highest: built-in defaults, the TOML file at path (optional when empty),
// then POLYMIRROR_* environment variables. A .env file in the working
// directory is loaded first so local development does not need exported vars.
func Load(path string) (Config, error) {
	// Ignore the error: a missing .env file is the normal case.
	_ = godotenv.Load()

	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			// A missing config file falls back to defaults plus env overrides.
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from POLYMIRROR_* environment variables.
func applyEnv(cfg *Config) {
	setStr("POLYMIRROR_MODE", &cfg.Mode)
	setStr("POLYMIRROR_LOG_LEVEL", &cfg.LogLevel)

	setStr("POLYMIRROR_CHAIN_RPC_URL", &cfg.Chain.RPCURL)
	setInt("POLYMIRROR_CHAIN_ID", &cfg.Chain.ChainID)
	setStr("POLYMIRROR_CHAIN_EXCHANGE_ADDRESS", &cfg.Chain.ExchangeAddress)
	setStr("POLYMIRROR_CHAIN_FILL_EVENT_TOPIC", &cfg.Chain.FillEventTopic)
	setUint64("POLYMIRROR_CHAIN_LOOKBACK_BLOCKS", &cfg.Chain.LookbackBlocks)
	setUint64("POLYMIRROR_CHAIN_MAX_WINDOW_BLOCKS", &cfg.Chain.MaxWindowBlocks)
	setDuration("POLYMIRROR_CHAIN_POLL_INTERVAL", &cfg.Chain.PollInterval)
	setDuration("POLYMIRROR_CHAIN_RPC_TIMEOUT", &cfg.Chain.RPCTimeout)

	setStr("POLYMIRROR_GAMMA_HOST", &cfg.Gamma.Host)

	setBool("POLYMIRROR_BOT_ACTIVE", &cfg.Bot.Active)
	setStr("POLYMIRROR_BOT_TARGET_WALLET", &cfg.Bot.TargetWallet)
	setFloat64("POLYMIRROR_BOT_COPY_RATIO", &cfg.Bot.CopyRatio)
	setFloat64("POLYMIRROR_BOT_MAX_CAP_USDC", &cfg.Bot.MaxCapUSDC)
	setFloat64("POLYMIRROR_BOT_SLIPPAGE_TOLERANCE", &cfg.Bot.SlippageTolerance)

	setStr("POLYMIRROR_CACHE_BACKEND", &cfg.Cache.Backend)
	setInt("POLYMIRROR_CACHE_CAPACITY", &cfg.Cache.Capacity)
	setDuration("POLYMIRROR_CACHE_REDIS_TTL", &cfg.Cache.RedisTTL)

	setStr("POLYMIRROR_REDIS_ADDR", &cfg.Redis.Addr)
	setStr("POLYMIRROR_REDIS_PASSWORD", &cfg.Redis.Password)
	setInt("POLYMIRROR_REDIS_DB", &cfg.Redis.DB)
	setInt("POLYMIRROR_REDIS_POOL_SIZE", &cfg.Redis.PoolSize)
	setBool("POLYMIRROR_REDIS_TLS_ENABLED", &cfg.Redis.TLSEnabled)

	setStr("POLYMIRROR_NOTIFY_TELEGRAM_TOKEN", &cfg.Notify.TelegramToken)
	setStr("POLYMIRROR_NOTIFY_TELEGRAM_CHAT_ID", &cfg.Notify.TelegramChatID)
	setStr("POLYMIRROR_NOTIFY_DISCORD_WEBHOOK_URL", &cfg.Notify.DiscordWebhookURL)
	setStringSlice("POLYMIRROR_NOTIFY_EVENTS", &cfg.Notify.Events)

	setBool("POLYMIRROR_SERVER_ENABLED", &cfg.Server.Enabled)
	setInt("POLYMIRROR_SERVER_PORT", &cfg.Server.Port)
	setStringSlice("POLYMIRROR_SERVER_CORS_ORIGINS", &cfg.Server.CORSOrigins)
	setStr("POLYMIRROR_SERVER_API_KEY", &cfg.Server.APIKey)
}

func setStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(key string, dst *uint64) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setFloat64(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(key string, dst *duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}
