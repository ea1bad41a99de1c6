package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/kanban/internal/api/ws"
	"github.com/gosuda/kanban/internal/config"
	"github.com/gosuda/kanban/internal/domain"
	"github.com/gosuda/kanban/internal/notify"
	"github.com/gosuda/kanban/internal/server"
	"github.com/gosuda/kanban/internal/store/memory"
	"github.com/gosuda/kanban/internal/store/postgres"
	redisstore "github.com/gosuda/kanban/internal/store/redis"
	"github.com/gosuda/kanban/internal/workflow"
	"github.com/gosuda/kanban/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, board feed and web client",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	tx, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	sinks := notify.NewRegistry()
	sinks.Register("log", notify.LogSink{})

	var feed ws.BoardSubscriber
	if cfg.Redis.Addr != "" {
		pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			return err
		}
		defer pubsub.Close()

		sinks.Register("redis", pubsub)
		feed = pubsub
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", pubsub.Channel()).Msg("board feed enabled")
	}

	svc := workflow.NewService(tx, notify.New(sinks))

	// Strip the "build/" prefix from embedded asset paths.
	webAssets, err := fs.Sub(web.Assets, "build")
	if err != nil {
		return fmt.Errorf("web assets: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, svc, feed, webAssets)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("store", cfg.Store).Msg("starting server")
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("stopped")
	return nil
}

// openStore returns the configured transaction boundary and its release func.
func openStore(ctx context.Context, cfg *config.Config) (domain.Transactor, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory store; tasks are lost on restart")
		return memory.New(), func() {}, nil
	}

	store, err := connectPostgres(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, store.Pool(), "up"); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	return store, store.Close, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*postgres.Store, error) {
	return postgres.New(ctx, cfg.Database.DSN(),
		int32(cfg.Database.MaxConns), //nolint:gosec // bounds checked in loadConfig
		postgres.WithTxRetries(uint64(cfg.Database.TxMaxRetries)), //nolint:gosec // validated non-negative
	)
}
