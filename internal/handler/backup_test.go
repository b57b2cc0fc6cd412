package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/backup"
	"github.com/josh-kwaku/edificio/internal/domain"
)

type mockBackups struct {
	drive      *backup.DriveStatus
	entries    map[string][]backup.Entry
	toPathErr  error
	gotPath    string
	driveCalls int
}

func (m *mockBackups) DriveStatus() (*backup.DriveStatus, error) {
	return m.drive, nil
}

func (m *mockBackups) Diagnostics() []backup.ProbedPath {
	return []backup.ProbedPath{{Path: "/home/admin/Google Drive", Exists: false}}
}

func (m *mockBackups) History(dir string) ([]backup.Entry, error) {
	return m.entries[dir], nil
}

func (m *mockBackups) ToPath(_ context.Context, dir string) (*backup.Result, error) {
	m.gotPath = dir
	if m.toPathErr != nil {
		return nil, m.toPathErr
	}
	return &backup.Result{Path: dir + "/edificio-backup.db", Name: "edificio-backup.db", Size: 2048}, nil
}

func (m *mockBackups) ToDrive(_ context.Context) (*backup.Result, error) {
	m.driveCalls++
	if m.drive == nil || !m.drive.Detected {
		return nil, fmt.Errorf("ToDrive: %w", domain.ErrDriveNotDetected)
	}
	return &backup.Result{Path: m.drive.BackupFolder + "/edificio-backup.db", Size: 2048}, nil
}

func TestBackupStatus(t *testing.T) {
	newest := backup.Entry{Name: "edificio-2024-03-02.db", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Size: 10}
	older := backup.Entry{Name: "edificio-2024-03-01.db", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Size: 10}

	tests := []struct {
		name       string
		drive      *backup.DriveStatus
		wantDir    string
		wantTotal  int
		wantLatest string
	}{
		{
			name:       "drive detected",
			drive:      &backup.DriveStatus{Detected: true, Path: "/drive", BackupFolder: "/drive/Edificio"},
			wantDir:    "/drive/Edificio",
			wantTotal:  2,
			wantLatest: newest.Name,
		},
		{
			name:    "falls back to local folder",
			drive:   &backup.DriveStatus{Detected: false},
			wantDir: "/var/backups/edificio",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backups := &mockBackups{
				drive:   tc.drive,
				entries: map[string][]backup.Entry{"/drive/Edificio": {newest, older}},
			}
			h := NewBackupHandler(backups, "/var/backups/edificio")

			rec := httptest.NewRecorder()
			h.Status(rec, newRequest(http.MethodGet, "/api/v1/backups/status", "", nil))

			require.Equal(t, http.StatusOK, rec.Code)
			got := dataAs[backupStatusResponse](t, decodeResponse(t, rec))
			assert.Equal(t, tc.wantDir, got.BackupDir)
			assert.Equal(t, tc.wantTotal, got.TotalFiles)
			if tc.wantLatest == "" {
				assert.Nil(t, got.Latest)
			} else {
				require.NotNil(t, got.Latest)
				assert.Equal(t, tc.wantLatest, got.Latest.Name)
			}
		})
	}
}

func TestBackupCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		drive      *backup.DriveStatus
		toPathErr  error
		wantStatus int
		wantCode   string
		wantPath   string
	}{
		{name: "explicit folder", body: `{"path":"/mnt/usb"}`, wantStatus: http.StatusCreated, wantPath: "/mnt/usb"},
		{name: "drive folder when no body", drive: &backup.DriveStatus{Detected: true, BackupFolder: "/drive/Edificio"}, wantStatus: http.StatusCreated},
		{name: "no drive detected", body: `{}`, wantStatus: http.StatusUnprocessableEntity, wantCode: "DRIVE_NOT_DETECTED"},
		{
			name:       "missing folder",
			body:       `{"path":"/nope"}`,
			toPathErr:  fmt.Errorf("ToPath: %w", domain.ErrPathNotFound),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "PATH_NOT_FOUND",
			wantPath:   "/nope",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backups := &mockBackups{drive: tc.drive, toPathErr: tc.toPathErr}
			h := NewBackupHandler(backups, "")

			rec := httptest.NewRecorder()
			h.Create(rec, newRequest(http.MethodPost, "/api/v1/backups", tc.body, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantPath, backups.gotPath)
			if tc.wantPath == "" {
				assert.Equal(t, 1, backups.driveCalls)
			}
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, decodeResponse(t, rec).Error.Code)
			}
		})
	}
}

func TestBackupHistory_NoFolder(t *testing.T) {
	h := NewBackupHandler(&mockBackups{drive: &backup.DriveStatus{}}, "")

	rec := httptest.NewRecorder()
	h.History(rec, newRequest(http.MethodGet, "/api/v1/backups/history", "", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, dataAs[[]backup.Entry](t, decodeResponse(t, rec)))
}
