package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ray-no/fedhamev/internal/access"
	"github.com/Ray-no/fedhamev/internal/event"
	"github.com/Ray-no/fedhamev/internal/ledger"
	"github.com/Ray-no/fedhamev/internal/notify"
	"github.com/Ray-no/fedhamev/internal/server"
	"github.com/Ray-no/fedhamev/internal/server/handler"
	"github.com/Ray-no/fedhamev/internal/server/ws"
	"github.com/Ray-no/fedhamev/internal/watcher"
)

// shutdownGrace is how long in-flight HTTP requests get to finish once the
// root context is cancelled.
const shutdownGrace = 10 * time.Second

// tailPollInterval is the stream polling cadence in tail mode.
const tailPollInterval = 2 * time.Second

// buildService assembles the watcher service: role state, the in-memory
// ledger, the event fanout, and the durable stores. It bootstraps the owner
// record and restores state from the stores before returning.
func (a *App) buildService(ctx context.Context, deps *Dependencies) (*watcher.Service, error) {
	owner := a.cfg.OwnerAddress()

	if err := bootstrapOwner(ctx, deps.RoleStore, owner); err != nil {
		return nil, err
	}

	sink := event.NewFanout(
		event.NewBusSink(deps.SignalBus),
		event.NewLogSink(a.logger),
		notify.NewAlerter(deps.Notifier),
	)

	svc := watcher.NewService(watcher.Config{
		Roles:       access.NewRoles(owner),
		Ledger:      ledger.New(),
		Sink:        sink,
		LedgerStore: deps.LedgerStore,
		RoleStore:   deps.RoleStore,
		Locks:       deps.LockManager,
		Blobs:       deps.BlobWriter,
		Logger:      a.logger,
	})

	if err := svc.Restore(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// ServeMode runs the HTTP + WebSocket API until the context is cancelled.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	svc, err := a.buildService(ctx, deps)
	if err != nil {
		return err
	}

	hub := ws.NewHub(deps.SignalBus, svc.Length, a.logger)

	handlers := server.Handlers{
		Health: handler.NewHealthHandler(a.logger),
		Ledger: handler.NewLedgerHandler(svc, a.logger),
		Access: handler.NewAccessHandler(svc, a.logger),
		Scan:   handler.NewScanHandler(svc, a.logger),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := hub.Run(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("app: ws hub: %w", err)
		}
		return nil
	})

	g.Go(srv.Start)

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// ScanMode runs one full opportunity scan as the owner and exits. Findings
// are published to the signal bus and operator channels like in serve mode.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	svc, err := a.buildService(ctx, deps)
	if err != nil {
		return err
	}

	if err := svc.Scan(ctx, svc.Owner()); err != nil {
		return fmt.Errorf("app: scan: %w", err)
	}

	a.logger.InfoContext(ctx, "scan complete",
		slog.Int("ledger_length", svc.Length()),
	)
	return nil
}

// TailMode follows the transaction and opportunity streams and logs every
// event until the context is cancelled. It needs no owner and no database;
// it is a read-only window onto a running deployment.
func (a *App) TailMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting tail mode")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.tailStream(ctx, deps, event.StreamTransactions) })
	g.Go(func() error { return a.tailStream(ctx, deps, event.StreamOpportunities) })

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// tailStream polls one stream and logs each message payload.
func (a *App) tailStream(ctx context.Context, deps *Dependencies, stream string) error {
	logger := a.logger.With(slog.String("stream", stream))

	lastID := "0"
	ticker := time.NewTicker(tailPollInterval)
	defer ticker.Stop()

	for {
		msgs, err := deps.SignalBus.StreamRead(ctx, stream, lastID, 100)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.ErrorContext(ctx, "stream read failed", slog.String("error", err.Error()))
		}
		for _, m := range msgs {
			lastID = m.ID
			logger.InfoContext(ctx, "event",
				slog.String("id", m.ID),
				slog.String("payload", string(m.Payload)),
			)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
