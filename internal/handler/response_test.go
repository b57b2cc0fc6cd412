package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
)

// newRequest builds a request with chi URL params already resolved.
func newRequest(method, target, body string, params map[string]string) *http.Request {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

// dataAs re-decodes the envelope's data into a concrete shape.
func dataAs[T any](t *testing.T, resp APIResponse) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func fieldNames(t *testing.T, resp APIResponse) []string {
	t.Helper()
	fields := dataAs[[]FieldError](t, APIResponse{Data: resp.Error.Details})
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func TestAppErrorFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *AppError
	}{
		{"apartment not found wins over not found", fmt.Errorf("Get: %w", domain.ErrApartmentNotFound), ErrApartmentNotFound},
		{"generic not found", fmt.Errorf("Get: %w", domain.ErrNotFound), ErrResourceNotFound},
		{"version conflict", fmt.Errorf("Update: %w", domain.ErrVersionConflict), ErrVersionConflict},
		{"already linked", domain.ErrReceiptAlreadyLinked, ErrReceiptAlreadyLinked},
		{"charges already generated", domain.ErrChargesAlreadyGenerated, ErrChargesAlreadyGenerated},
		{"renderer disabled", domain.ErrRendererDisabled, ErrRendererDisabled},
		{"unknown error", errors.New("boom"), ErrInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AppErrorFor(tc.err))
		})
	}
}

func TestRespondDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, fmt.Errorf("CreateReceipt: %w", domain.ErrInvalidAmount))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_AMOUNT", resp.Error.Code)
}

func TestRespondFile(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondFile(rec, "application/pdf", "recibo.pdf", []byte("%PDF-1.4"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="recibo.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}
