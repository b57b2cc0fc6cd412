package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
)

var fixedNow = time.Date(2024, 3, 15, 10, 30, 45, 123_000_000, time.UTC)

type fakeCheckpointer struct {
	calls int
	err   error
}

func (f *fakeCheckpointer) Checkpoint(context.Context) error {
	f.calls++
	return f.err
}

func newTestService(t *testing.T, cfg Config, goos string) *Service {
	t.Helper()
	s := NewService(cfg, nil)
	s.goos = goos
	s.now = func() time.Time { return fixedNow }
	return s
}

func writeDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.db")
	require.NoError(t, os.WriteFile(path, []byte("SQLite format 3\x00"), 0o644))
	return path
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "backup_2024-03-15T10-30-45-123Z.db", FileName(fixedNow))
	assert.Equal(t, "backup_2024-03-15T10-30-45-123Z.db", FileName(fixedNow.In(time.FixedZone("UYT", -3*3600))))
}

func TestCreate(t *testing.T) {
	db := writeDB(t)
	dest := t.TempDir()
	cp := &fakeCheckpointer{err: errors.New("busy")}
	s := newTestService(t, Config{DatabasePath: db}, "linux")
	s.db = cp

	res, err := s.Create(context.Background(), dest)
	require.NoError(t, err)

	assert.Equal(t, 1, cp.calls)
	assert.Equal(t, filepath.Join(dest, "backup_2024-03-15T10-30-45-123Z.db"), res.Path)
	assert.Equal(t, int64(16), res.Size)
	got, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "SQLite format 3\x00", string(got))
}

func TestCreate_SourceMissing(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"no sqlite file configured", ""},
		{"file does not exist", filepath.Join(t.TempDir(), "nope.db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, Config{DatabasePath: tt.path}, "linux")
			_, err := s.Create(context.Background(), t.TempDir())
			require.ErrorIs(t, err, domain.ErrBackupSourceMissing)
		})
	}
}

func TestToPath(t *testing.T) {
	s := newTestService(t, Config{DatabasePath: writeDB(t)}, "linux")

	_, err := s.ToPath(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, domain.ErrPathNotFound)

	dir := t.TempDir()
	res, err := s.ToPath(context.Background(), dir)
	require.NoError(t, err)
	assert.FileExists(t, res.Path)
}

func TestAuto_FallsBackToBackupDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "backups")
	s := newTestService(t, Config{DatabasePath: writeDB(t), Dir: dir}, "linux")

	path, err := s.Auto(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName(fixedNow)), path)
	assert.FileExists(t, path)
}

func TestAuto_NoDestination(t *testing.T) {
	s := newTestService(t, Config{DatabasePath: writeDB(t)}, "linux")

	_, err := s.Auto(context.Background())
	require.ErrorIs(t, err, domain.ErrDriveNotDetected)
}

func TestToDrive_Mac(t *testing.T) {
	home := t.TempDir()
	drive := filepath.Join(home, "Library", "CloudStorage", "GoogleDrive-admin@example.com", "Mi unidad")
	require.NoError(t, os.MkdirAll(drive, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Library", "CloudStorage", "Dropbox"), 0o755))

	s := newTestService(t, Config{DatabasePath: writeDB(t)}, "darwin")
	s.home = func() (string, error) { return home, nil }

	status, err := s.DriveStatus()
	require.NoError(t, err)
	assert.True(t, status.Detected)
	assert.Equal(t, drive, status.Path)
	assert.Equal(t, filepath.Join(drive, DefaultFolderName), status.BackupFolder)
	assert.DirExists(t, status.BackupFolder)

	res, err := s.ToDrive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(drive, DefaultFolderName, FileName(fixedNow)), res.Path)
}

func TestToDrive_NotDetected(t *testing.T) {
	s := newTestService(t, Config{DatabasePath: writeDB(t)}, "darwin")
	s.home = func() (string, error) { return t.TempDir(), nil }

	status, err := s.DriveStatus()
	require.NoError(t, err)
	assert.False(t, status.Detected)

	_, err = s.ToDrive(context.Background())
	require.ErrorIs(t, err, domain.ErrDriveNotDetected)
}

func TestDetectDrive_Windows(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		want     string
		found    bool
	}{
		{"spanish virtual drive", []string{`G:\`, `G:\Mi unidad`}, `G:\Mi unidad`, true},
		{"english drive on a later letter", []string{`E:\`, `E:\My Drive`}, `E:\My Drive`, true},
		{"letter order wins", []string{`D:\My Drive`, `H:\Mi unidad`}, `H:\Mi unidad`, true},
		{"bare root without markers", []string{`D:\`}, "", false},
		{"root with shortcut targets", []string{`D:\`, `D:\.shortcut-targets-by-id`}, `D:\`, true},
		{"root with shared drives", []string{`F:\`, `F:\Shared drives`}, `F:\`, true},
		{"home folder", []string{`C:\Users\ana\Google Drive`}, `C:\Users\ana\Google Drive`, true},
		{"home spanish folder first", []string{`C:\Users\ana\Google Drive`, `C:\Users\ana\Google Drive\Mi unidad`}, `C:\Users\ana\Google Drive\Mi unidad`, true},
		{"nothing", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := map[string]bool{}
			for _, p := range tt.existing {
				set[p] = true
			}
			s := newTestService(t, Config{}, "windows")
			s.exists = func(p string) bool { return set[p] }
			s.home = func() (string, error) { return `C:\Users\ana`, nil }

			got, ok := s.DetectDrive()
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiagnostics_Windows(t *testing.T) {
	s := newTestService(t, Config{}, "windows")
	s.exists = func(p string) bool { return p == `G:\Mi unidad` }
	s.home = func() (string, error) { return `C:\Users\ana`, nil }

	probes := s.Diagnostics()
	require.Len(t, probes, len(driveLetters)*2+len(windowsHomeDirs))
	assert.Equal(t, ProbedPath{Path: `G:\Mi unidad`, Exists: true}, probes[0])
	assert.Equal(t, ProbedPath{Path: `G:\My Drive`, Exists: false}, probes[1])
	assert.Equal(t, `C:\Users\ana\GoogleDrive\My Drive`, probes[len(probes)-1].Path)
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"backup_2024-01-10T08-00-00-000Z.db",
		"backup_2024-03-01T12-15-30-500Z.db",
		"backup_2024-03-01T12-15-30-100Z.db",
		"notes.txt",
		"backup_2024-02-01T00-00-00-000Z.db.tmp",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "backup_dir.db"), 0o755))

	s := newTestService(t, Config{}, "linux")
	got, err := s.History(dir)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "backup_2024-03-01T12-15-30-500Z.db", got[0].Name)
	assert.Equal(t, "backup_2024-03-01T12-15-30-100Z.db", got[1].Name)
	assert.Equal(t, "backup_2024-01-10T08-00-00-000Z.db", got[2].Name)
	assert.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), got[2].Date)
	assert.Equal(t, int64(1), got[0].Size)
}

func TestHistory_MissingFolder(t *testing.T) {
	s := newTestService(t, Config{}, "linux")
	got, err := s.History(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
