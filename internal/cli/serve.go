package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/server"
	"github.com/josh-kwaku/edificio/internal/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PORT)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. Migrations run on startup, the first administrator is
created from ADMIN_EMAIL/ADMIN_PASSWORD when none exists, and a background worker
expires logbook entries, purges idempotency keys and takes scheduled backups.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ensureAdmin(ctx); err != nil {
		return err
	}

	h, err := a.handlers(ctx)
	if err != nil {
		return err
	}

	var backups interface {
		Auto(ctx context.Context) (string, error)
	}
	if cfg.BackupInterval > 0 {
		backups = a.backups
	}
	worker := service.NewMaintenanceWorker(a.idempotency, a.logbook, backups, logger, cfg.MaintenanceInterval, cfg.BackupInterval)
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go worker.Start(workerCtx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.NewHTTPServer(addr, server.NewRouter(h, a.routerOptions()), cfg.RequestTimeout)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", addr, "version", Version, "driver", cfg.DatabaseDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	cancelWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
