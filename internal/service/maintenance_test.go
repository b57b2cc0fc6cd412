package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCleaner struct {
	calls   int
	removed int64
	err     error
}

func (f *fakeCleaner) CleanExpired(_ context.Context, _ time.Time) (int64, error) {
	f.calls++
	return f.removed, f.err
}

type fakeExpirer struct{ calls int }

func (f *fakeExpirer) ExpireDue(context.Context) (int64, error) {
	f.calls++
	return 0, nil
}

type fakeBackups struct {
	calls int
	err   error
}

func (f *fakeBackups) Auto(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/tmp/backup_x.db", nil
}

func TestMaintenanceWorker_RunOnce(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)

	t.Run("backs up once per interval", func(t *testing.T) {
		cleaner, expirer, backups := &fakeCleaner{removed: 2}, &fakeExpirer{}, &fakeBackups{}
		w := NewMaintenanceWorker(cleaner, expirer, backups, logger, time.Minute, time.Hour)
		now := clock
		w.now = func() time.Time { return now }

		w.RunOnce(context.Background())
		now = now.Add(30 * time.Minute)
		w.RunOnce(context.Background())
		now = now.Add(31 * time.Minute)
		w.RunOnce(context.Background())

		assert.Equal(t, 3, cleaner.calls)
		assert.Equal(t, 3, expirer.calls)
		assert.Equal(t, 2, backups.calls)
	})

	t.Run("failed backup is retried next tick", func(t *testing.T) {
		backups := &fakeBackups{err: errors.New("disk full")}
		w := NewMaintenanceWorker(&fakeCleaner{}, &fakeExpirer{}, backups, logger, time.Minute, time.Hour)
		w.now = func() time.Time { return clock }

		w.RunOnce(context.Background())
		w.RunOnce(context.Background())
		assert.Equal(t, 2, backups.calls)
	})

	t.Run("cleanup errors do not stop the pass", func(t *testing.T) {
		expirer := &fakeExpirer{}
		w := NewMaintenanceWorker(&fakeCleaner{err: errors.New("locked")}, expirer, nil, logger, time.Minute, time.Hour)
		w.RunOnce(context.Background())
		assert.Equal(t, 1, expirer.calls)
	})

	t.Run("zero backup interval disables backups", func(t *testing.T) {
		backups := &fakeBackups{}
		w := NewMaintenanceWorker(&fakeCleaner{}, &fakeExpirer{}, backups, logger, time.Minute, 0)
		w.RunOnce(context.Background())
		assert.Zero(t, backups.calls)
	})
}

func TestMaintenanceWorker_StopsOnCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewMaintenanceWorker(&fakeCleaner{}, &fakeExpirer{}, nil, logger, 5*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
