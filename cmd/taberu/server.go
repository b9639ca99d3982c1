package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/taberu/internal/importer"
	"github.com/hyperjump/taberu/internal/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the HTTP API and the import directory watcher",
	Args:  cobra.NoArgs,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	return withComponents(func(c *Components) error {
		cfg, logger := c.Config, c.Logger

		var remote server.Provider
		if c.Remote != nil {
			remote = c.Remote
		}
		srv := server.NewServer(c.Store, remote, c.Catalog, cfg, logger)

		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if len(cfg.Import.Directories) > 0 {
			imp := importer.New(c.Store, importer.WithIndexer(c.Catalog), importer.WithLogger(logger))
			watchSvc := importer.WatchImports(
				watchCtx,
				imp,
				cfg.Import.Directories,
				cfg.Import.Extensions,
				importer.WithWatcherLogger(logger),
				importer.WithSettle(cfg.Import.Settle()),
			)
			if err := watchSvc.Start(watchCtx); err != nil {
				return err
			}
			defer watchSvc.Stop()
			watchSvc.SyncExisting()
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
		case err := <-errCh:
			logger.Error("Server failed", zap.Error(err))
			return err
		}

		logger.Info("Shutting down...")
		watchCancel()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	})
}
