package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/josh-kwaku/edificio/internal/backup"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type backupService interface {
	DriveStatus() (*backup.DriveStatus, error)
	Diagnostics() []backup.ProbedPath
	History(dir string) ([]backup.Entry, error)
	ToPath(ctx context.Context, dir string) (*backup.Result, error)
	ToDrive(ctx context.Context) (*backup.Result, error)
}

type BackupHandler struct {
	backups backupService
	// fallbackDir is listed by History when no drive folder is detected.
	fallbackDir string
}

func NewBackupHandler(backups backupService, fallbackDir string) *BackupHandler {
	return &BackupHandler{backups: backups, fallbackDir: fallbackDir}
}

type backupStatusResponse struct {
	Drive      *backup.DriveStatus `json:"drive"`
	Latest     *backup.Entry       `json:"latest"`
	BackupDir  string              `json:"backup_dir,omitempty"`
	TotalFiles int                 `json:"total_files"`
}

func (h *BackupHandler) historyDir(status *backup.DriveStatus) string {
	if status != nil && status.Detected {
		return status.BackupFolder
	}
	return h.fallbackDir
}

// Status reports whether a drive folder was found and the most recent backup in it.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.backups.DriveStatus()
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to detect drive", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := backupStatusResponse{Drive: status, BackupDir: h.historyDir(status)}
	if resp.BackupDir != "" {
		entries, err := h.backups.History(resp.BackupDir)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		resp.TotalFiles = len(entries)
		if len(entries) > 0 {
			resp.Latest = &entries[0]
		}
	}
	RespondSuccess(w, http.StatusOK, resp)
}

// History lists the backups in ?path, or in the drive folder when omitted.
func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	dir := strings.TrimSpace(r.URL.Query().Get("path"))
	if dir == "" {
		status, err := h.backups.DriveStatus()
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		dir = h.historyDir(status)
	}
	if dir == "" {
		RespondSuccess(w, http.StatusOK, []backup.Entry{})
		return
	}

	entries, err := h.backups.History(dir)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list backups", "error", err, "path", dir)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, entries)
}

func (h *BackupHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	RespondSuccess(w, http.StatusOK, h.backups.Diagnostics())
}

type backupRequest struct {
	Path string `json:"path" validate:"omitempty,max=1024"`
}

// Create copies the database into the requested folder, or into the drive folder
// when no path is given.
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	var (
		res *backup.Result
		err error
	)
	if path := strings.TrimSpace(req.Path); path != "" {
		res, err = h.backups.ToPath(r.Context(), path)
	} else {
		res, err = h.backups.ToDrive(r.Context())
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("backup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info("backup created", "path", res.Path, "size", res.Size)
	RespondSuccess(w, http.StatusCreated, res)
}
