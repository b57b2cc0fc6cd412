package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/josh-kwaku/edificio/internal/metrics"
)

type idempotencyCleaner interface {
	CleanExpired(ctx context.Context, now time.Time) (int64, error)
}

type dueExpirer interface {
	ExpireDue(ctx context.Context) (int64, error)
}

type backupRunner interface {
	Auto(ctx context.Context) (string, error)
}

// MaintenanceWorker runs the periodic housekeeping of the service.
type MaintenanceWorker struct {
	idempotency    idempotencyCleaner
	logbook        dueExpirer
	backups        backupRunner
	logger         *slog.Logger
	interval       time.Duration
	backupInterval time.Duration
	lastBackup     time.Time
	now            func() time.Time
}

// NewMaintenanceWorker builds the worker. A nil backups or a zero backupInterval disables
// automatic backups.
func NewMaintenanceWorker(
	idempotency idempotencyCleaner,
	logbook dueExpirer,
	backups backupRunner,
	logger *slog.Logger,
	interval time.Duration,
	backupInterval time.Duration,
) *MaintenanceWorker {
	return &MaintenanceWorker{
		idempotency:    idempotency,
		logbook:        logbook,
		backups:        backups,
		logger:         logger,
		interval:       interval,
		backupInterval: backupInterval,
		now:            time.Now,
	}
}

func (w *MaintenanceWorker) Start(ctx context.Context) {
	w.logger.Info("maintenance worker started", "interval", w.interval, "backup_interval", w.backupInterval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("maintenance worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single maintenance pass. Failures are logged and do not stop the pass.
func (w *MaintenanceWorker) RunOnce(ctx context.Context) {
	now := w.now().UTC()

	n, err := w.idempotency.CleanExpired(ctx, now)
	if err != nil {
		w.logger.Error("failed to clean idempotency keys", "error", err)
	} else if n > 0 {
		metrics.IdempotencyEvicted.Add(float64(n))
		w.logger.Info("expired idempotency keys removed", "count", n)
	}

	expired, err := w.logbook.ExpireDue(ctx)
	if err != nil {
		w.logger.Error("failed to expire logbook entries", "error", err)
	} else if expired > 0 {
		w.logger.Info("logbook entries expired", "count", expired)
	}

	if w.backups == nil || w.backupInterval <= 0 {
		return
	}
	if !w.lastBackup.IsZero() && now.Sub(w.lastBackup) < w.backupInterval {
		return
	}
	path, err := w.backups.Auto(ctx)
	if err != nil {
		w.logger.Error("automatic backup failed", "error", err)
		return
	}
	w.lastBackup = now
	w.logger.Info("automatic backup created", "path", path)
}
