package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mcpdev/internal/buildinfo"
	"mcpdev/internal/config"
	"mcpdev/internal/infra/bridge"
	"mcpdev/internal/infra/postgres"
	"mcpdev/internal/infra/rediscache"
	"mcpdev/internal/infra/resources"
	"mcpdev/internal/infra/sandbox"
	"mcpdev/internal/infra/telemetry"
	"mcpdev/internal/infra/tools"
)

type serveOptions struct {
	configPath string
}

func main() {
	// Production config logs to stderr; stdout belongs to the MCP transport.
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	opts := serveOptions{}

	root := &cobra.Command{
		Use:     "mcpdev",
		Short:   "Development bridge server exposing files, PostgreSQL, Redis, and CSV analysis over MCP",
		Version: buildinfo.Version,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", opts.configPath, "path to optional YAML config file")

	root.AddCommand(
		newServeCmd(logger, &opts),
		newValidateCmd(logger, &opts),
	)

	return root
}

func newServeCmd(logger *zap.Logger, opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge on the stdio transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return serve(ctx, logger, opts.configPath)
		},
	}
}

func newValidateCmd(logger *zap.Logger, opts *serveOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration without starting the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if _, err := rediscache.NewClient(cfg.RedisURL); err != nil {
				return err
			}
			logger.Info("configuration ok",
				zap.String("dataDir", cfg.DataDir),
				zap.String("probeAddr", cfg.ProbeAddr),
			)
			return nil
		},
	}
}

func serve(ctx context.Context, logger *zap.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	root, err := sandbox.NewRoot(cfg.DataDir)
	if err != nil {
		return err
	}

	db := postgres.NewClient(cfg.DatabaseURL, logger)

	cache, err := rediscache.NewClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer cache.Close()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := cache.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable at startup; cache tools will fail per call", zap.Error(err))
	} else {
		logger.Info("redis connection established")
	}
	cancelPing()

	metrics := telemetry.NewMetrics(nil)
	catalog := resources.NewCatalog(root, db, logger)
	reader := resources.NewReader(root, db)
	dispatcher := tools.NewDispatcher(root, db, cache, metrics, logger)

	watcher := sandbox.NewWatcher(root, logger)
	go watcher.Run(ctx)

	go func() {
		err := telemetry.StartProbeServer(ctx, telemetry.ProbeServerOptions{
			Addr:        cfg.ProbeAddr,
			EnablePprof: cfg.Debug,
		}, logger)
		if err != nil {
			logger.Error("probe server failed", zap.Error(err))
		}
	}()

	logger.Info("mcp development server starting",
		zap.String("dataDir", root.Dir()),
		zap.String("probeAddr", cfg.ProbeAddr),
		zap.Bool("debug", cfg.Debug),
	)

	return bridge.New(catalog, reader, dispatcher, metrics, watcher.Changes(), logger).Run(ctx)
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
