package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/polymirror/internal/domain"
	"github.com/alanyoungcy/polymirror/internal/notify"
	"github.com/alanyoungcy/polymirror/internal/pipeline"
	"github.com/alanyoungcy/polymirror/internal/server"
	"github.com/alanyoungcy/polymirror/internal/server/handler"
	"github.com/alanyoungcy/polymirror/internal/server/ws"
)

// MonitorMode runs the headless scan loop: poll the chain, record whale
// trades, and push alerts. No HTTP surface.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	g, ctx := errgroup.WithContext(ctx)

	a.attachScannerCallbacks(ctx, deps, nil)

	g.Go(func() error {
		err := deps.Scanner.RunLoop(ctx, a.cfg.Chain.PollInterval.Duration)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("monitor mode: scan loop: %w", err)
	})

	return g.Wait()
}

// ServerMode runs only the HTTP + WebSocket API. Scan cycles execute solely
// through POST /api/scan/trigger.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := a.startHub(ctx, g)
	a.attachScannerCallbacks(ctx, deps, hub)
	a.startHTTPServer(ctx, g, deps, hub)

	return g.Wait()
}

// FullMode runs the scan loop and the HTTP + WebSocket API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	hub := a.startHub(ctx, g)
	a.attachScannerCallbacks(ctx, deps, hub)

	g.Go(func() error {
		err := deps.Scanner.RunLoop(ctx, a.cfg.Chain.PollInterval.Duration)
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("full mode: scan loop: %w", err)
	})

	a.startHTTPServer(ctx, g, deps, hub)

	return g.Wait()
}

// attachScannerCallbacks fans detected trades and cycle outcomes out to the
// WebSocket hub and the notifier. hub may be nil in monitor mode. Must run
// before the first poll.
func (a *App) attachScannerCallbacks(ctx context.Context, deps *Dependencies, hub *ws.Hub) {
	deps.Scanner.OnTrade(func(trade domain.Trade) {
		if hub != nil {
			hub.Publish(ws.ChannelTrades, trade)
		}
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := deps.Notifier.TradeAlert(notifyCtx, trade); err != nil {
				a.logger.WarnContext(ctx, "trade alert delivery failed",
					slog.String("trade_id", trade.ID),
					slog.String("error", err.Error()),
				)
			}
		}()
	})

	deps.Scanner.OnCycle(func(result pipeline.CycleResult) {
		if hub != nil {
			hub.Publish(ws.ChannelStatus, deps.Scanner.Status())
		}
		if result.Status == pipeline.CycleAborted {
			go func() {
				notifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				msg := fmt.Sprintf("scan cycle aborted: %s", result.Reason)
				if result.Err != nil {
					msg = fmt.Sprintf("scan cycle aborted: %s: %v", result.Reason, result.Err)
				}
				if err := deps.Notifier.Notify(notifyCtx, notify.EventScanAborted, "Scan aborted", msg); err != nil {
					a.logger.WarnContext(ctx, "abort alert delivery failed",
						slog.String("error", err.Error()),
					)
				}
			}()
		}
	})
}

// startHub creates the WebSocket hub and runs its event loop on the group.
func (a *App) startHub(ctx context.Context, g *errgroup.Group) *ws.Hub {
	hub := ws.NewHub(a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: time.Now().UTC(),
	})
	g.Go(func() error {
		err := hub.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	return hub
}

// startHTTPServer builds the handlers, registers them on the API server, and
// adds serve/shutdown goroutines to the group.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, hub *ws.Hub) {
	startedAt := time.Now().UTC()

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(startedAt),
		Trades: handler.NewTradeHandler(deps.State, a.logger),
		Logs:   handler.NewLogHandler(deps.State, a.logger),
		Config: handler.NewBotConfigHandler(deps.State, hub, a.logger),
		Scan:   handler.NewScanHandler(deps.Scanner, a.logger),
		Status: handler.NewStatusHandler(deps.State, deps.Scanner, a.cfg.Mode, startedAt, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
