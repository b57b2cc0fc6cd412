// Package backup copies the embedded sqlite database to a local folder or to the
// folder a desktop cloud-drive client keeps in sync.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/metrics"
)

const DefaultFolderName = "Admin Edificios Backups"

const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

type Config struct {
	// DatabasePath is the sqlite file on disk; empty when the server runs on postgres
	// or an in-memory database.
	DatabasePath string
	FolderName   string
	// Dir is where scheduled backups go when no drive folder is detected.
	Dir string
}

type checkpointer interface {
	Checkpoint(ctx context.Context) error
}

type Result struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

type DriveStatus struct {
	Detected     bool   `json:"detected"`
	Path         string `json:"path,omitempty"`
	BackupFolder string `json:"backup_folder,omitempty"`
}

type ProbedPath struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

type Entry struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
	Size int64     `json:"size"`
}

type Service struct {
	cfg  Config
	db   checkpointer
	now  func() time.Time
	goos string
	home func() (string, error)

	exists  func(path string) bool
	readDir func(path string) ([]os.DirEntry, error)
}

func NewService(cfg Config, db checkpointer) *Service {
	if cfg.FolderName == "" {
		cfg.FolderName = DefaultFolderName
	}
	return &Service{
		cfg:     cfg,
		db:      db,
		now:     time.Now,
		goos:    runtime.GOOS,
		home:    os.UserHomeDir,
		exists:  pathExists,
		readDir: os.ReadDir,
	}
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileName is backup_<RFC 3339 UTC with millis>.db with ':' and '.' swapped for '-'.
func FileName(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)
	return "backup_" + ts + ".db"
}

// Create copies the database file into dest.
func (s *Service) Create(ctx context.Context, dest string) (*Result, error) {
	src := s.cfg.DatabasePath
	if src == "" || !s.exists(src) {
		return nil, fmt.Errorf("Create: %w", domain.ErrBackupSourceMissing)
	}

	if s.db != nil {
		if err := s.db.Checkpoint(ctx); err != nil {
			logging.FromContext(ctx).Warn("wal checkpoint failed, copying anyway", "error", err)
		}
	}

	now := s.now()
	name := FileName(now)
	target := filepath.Join(dest, name)

	size, err := copyFile(src, target)
	if err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}

	logging.FromContext(ctx).Info("backup written", "path", target, "bytes", size)
	return &Result{Path: target, Name: name, CreatedAt: now, Size: size}, nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create target: %w", err)
	}

	n, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("copy: %w", err)
	}
	return n, nil
}

// ToPath backs up into an existing folder chosen by the user.
func (s *Service) ToPath(ctx context.Context, dir string) (*Result, error) {
	if dir == "" || !s.exists(dir) {
		record(TriggerManual, domain.ErrPathNotFound)
		return nil, fmt.Errorf("ToPath %s: %w", dir, domain.ErrPathNotFound)
	}
	res, err := s.Create(ctx, dir)
	record(TriggerManual, err)
	if err != nil {
		return nil, fmt.Errorf("ToPath: %w", err)
	}
	return res, nil
}

// ToDrive backs up into the drive backup folder, creating it when missing.
func (s *Service) ToDrive(ctx context.Context) (*Result, error) {
	folder, err := s.driveFolder()
	if err != nil {
		record(TriggerManual, err)
		return nil, fmt.Errorf("ToDrive: %w", err)
	}
	res, err := s.Create(ctx, folder)
	record(TriggerManual, err)
	if err != nil {
		return nil, fmt.Errorf("ToDrive: %w", err)
	}
	return res, nil
}

// Auto is the scheduled backup: the drive folder when one is detected, otherwise
// the configured directory.
func (s *Service) Auto(ctx context.Context) (string, error) {
	dest, err := s.driveFolder()
	if errors.Is(err, domain.ErrDriveNotDetected) && s.cfg.Dir != "" {
		dest, err = s.cfg.Dir, os.MkdirAll(s.cfg.Dir, 0o755)
	}
	if err != nil {
		record(TriggerScheduled, err)
		return "", fmt.Errorf("Auto: %w", err)
	}

	res, err := s.Create(ctx, dest)
	record(TriggerScheduled, err)
	if err != nil {
		return "", fmt.Errorf("Auto: %w", err)
	}
	return res.Path, nil
}

func record(trigger string, err error) {
	if err != nil {
		metrics.Backups.WithLabelValues(trigger, "error").Inc()
		return
	}
	metrics.Backups.WithLabelValues(trigger, "ok").Inc()
	metrics.LastBackupTimestamp.SetToCurrentTime()
}

func (s *Service) driveFolder() (string, error) {
	drive, ok := s.DetectDrive()
	if !ok {
		return "", domain.ErrDriveNotDetected
	}
	folder := s.join(drive, s.cfg.FolderName)
	if !s.exists(folder) {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return "", fmt.Errorf("create backup folder: %w", err)
		}
	}
	return folder, nil
}

func (s *Service) DriveStatus() (*DriveStatus, error) {
	drive, ok := s.DetectDrive()
	if !ok {
		return &DriveStatus{}, nil
	}
	folder, err := s.driveFolder()
	if err != nil {
		return nil, fmt.Errorf("DriveStatus: %w", err)
	}
	return &DriveStatus{Detected: true, Path: drive, BackupFolder: folder}, nil
}

var historyName = regexp.MustCompile(`^backup_(\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2})(?:-(\d{3}))?`)

// History lists backup_*.db files in dir, newest first. A missing folder has no history.
func (s *Service) History(dir string) ([]Entry, error) {
	entries, err := s.readDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "backup_") || !strings.HasSuffix(name, ".db") {
			continue
		}
		entry := Entry{Name: name}
		if info, err := e.Info(); err == nil {
			entry.Size = info.Size()
			entry.Date = info.ModTime().UTC()
		}
		if date, ok := parseName(name); ok {
			entry.Date = date
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func parseName(name string) (time.Time, bool) {
	m := historyName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02T15-04-05", m[1])
	if err != nil {
		return time.Time{}, false
	}
	if m[2] != "" {
		ms, _ := strconv.Atoi(m[2])
		t = t.Add(time.Duration(ms) * time.Millisecond)
	}
	return t, true
}
