package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alanyoungcy/polymirror/internal/cache/lru"
	"github.com/alanyoungcy/polymirror/internal/cache/redis"
	"github.com/alanyoungcy/polymirror/internal/config"
	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/notify"
	"github.com/alanyoungcy/polymirror/internal/pipeline"
	"github.com/alanyoungcy/polymirror/internal/platform/evm"
	"github.com/alanyoungcy/polymirror/internal/platform/gamma"
	"github.com/alanyoungcy/polymirror/internal/state"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	State    *state.ScanState
	Cache    domain.MetadataCache
	Resolver *pipeline.MetadataResolver
	Scanner  *pipeline.Scanner
	Notifier *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Scan state, seeded from the static bot section ---
	deps.State = state.New(cfg.SeedBotConfig())

	// --- Metadata cache ---
	switch strings.ToLower(cfg.Cache.Backend) {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		deps.Cache = redis.NewMetadataCache(redisClient, cfg.Cache.RedisTTL.Duration)
	default:
		deps.Cache = lru.New(cfg.Cache.Capacity)
	}

	// --- Market metadata resolver ---
	gammaClient := gamma.New(cfg.Gamma.Host)
	deps.Resolver = pipeline.NewMetadataResolver(gammaClient, deps.Cache, logger)

	// --- Scan coordinator ---
	dial := func(endpoint string) pipeline.ChainReader {
		return evm.New(endpoint, cfg.Chain.RPCTimeout.Duration)
	}
	deps.Scanner = pipeline.NewScanner(pipeline.Config{
		Exchange:        common.HexToAddress(cfg.Chain.ExchangeAddress),
		FillTopic:       common.HexToHash(cfg.Chain.FillEventTopic),
		DefaultEndpoint: cfg.Chain.RPCURL,
		Lookback:        cfg.Chain.LookbackBlocks,
		MaxWindow:       cfg.Chain.MaxWindowBlocks,
	}, dial, deps.Resolver, deps.State, logger)

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
