package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/storage"
)

type uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// UploadHandler stores expense attachments. A nil uploader means storage is not configured.
type UploadHandler struct {
	files uploader
}

func NewUploadHandler(files uploader) *UploadHandler {
	return &UploadHandler{files: files}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload accepts a multipart form with a single "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		RespondAppError(w, ErrStorageDisabled, nil)
		return
	}

	// Room for the multipart envelope on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondAppError(w, ErrFileTooLarge, nil)
			return
		}
		RespondAppError(w, ErrMissingFile, nil)
		return
	}
	defer file.Close()

	if header.Size > storage.MaxUploadSize {
		RespondAppError(w, ErrFileTooLarge, nil)
		return
	}

	url, err := h.files.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			RespondAppError(w, ErrFileTooLarge, nil)
			return
		}
		logging.FromContext(r.Context()).Error("failed to upload file", "error", err, "filename", header.Filename)
		RespondAppError(w, ErrUploadFailed, nil)
		return
	}
	RespondSuccess(w, http.StatusCreated, uploadResponse{URL: url})
}
