package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/storage"
)

type mockUploader struct {
	filename string
	body     []byte
	err      error
}

func (m *mockUploader) Upload(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.filename = filename
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.body = b
	return "https://files.example.com/gastos/" + filename, nil
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name       string
		uploader   *mockUploader
		field      string
		wantStatus int
		wantCode   string
	}{
		{name: "stores file", uploader: &mockUploader{}, field: "file", wantStatus: http.StatusCreated},
		{name: "wrong form field", uploader: &mockUploader{}, field: "document", wantStatus: http.StatusBadRequest, wantCode: "MISSING_FILE"},
		{
			name:       "storage rejects size",
			uploader:   &mockUploader{err: fmt.Errorf("Upload: %w", storage.ErrTooLarge)},
			field:      "file",
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE_TOO_LARGE",
		},
		{
			name:       "bucket unavailable",
			uploader:   &mockUploader{err: errors.New("connection refused")},
			field:      "file",
			wantStatus: http.StatusBadGateway,
			wantCode:   "UPLOAD_FAILED",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewUploadHandler(tc.uploader)

			rec := httptest.NewRecorder()
			h.Upload(rec, multipartRequest(t, tc.field, "factura.pdf", []byte("%PDF-1.7 factura")))

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			if tc.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				return
			}
			got := dataAs[uploadResponse](t, resp)
			assert.Equal(t, "https://files.example.com/gastos/factura.pdf", got.URL)
			assert.Equal(t, "%PDF-1.7 factura", string(tc.uploader.body))
		})
	}
}

func TestUpload_StorageDisabled(t *testing.T) {
	h := NewUploadHandler(nil)

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartRequest(t, "file", "factura.pdf", []byte("x")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "STORAGE_DISABLED", decodeResponse(t, rec).Error.Code)
}
