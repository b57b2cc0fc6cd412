package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/metrics"
	"github.com/josh-kwaku/edificio/internal/repository"
)

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

type fakeValidator struct {
	claims *auth.Claims
}

func (f fakeValidator) Validate(token string) (*auth.Claims, error) {
	if token != "good-token" {
		return nil, errors.New("signature is invalid")
	}
	return f.claims, nil
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	mw := Auth(fakeValidator{claims: &auth.Claims{UserID: userID}})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusOK},
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized, wantCode: "MISSING_TOKEN"},
		{name: "not bearer", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
		{name: "rejected token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_TOKEN"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotUser uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUser, _ = auth.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/apartments", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			mw(next).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, errorCode(t, rec))
				assert.Equal(t, uuid.Nil, gotUser)
				return
			}
			assert.Equal(t, userID, gotUser)
		})
	}
}

type memoryIdempotencyRepo struct {
	entries map[string]*repository.IdempotencyCacheEntry
	getErr  error
}

func newMemoryIdempotencyRepo() *memoryIdempotencyRepo {
	return &memoryIdempotencyRepo{entries: map[string]*repository.IdempotencyCacheEntry{}}
}

func (m *memoryIdempotencyRepo) Get(_ context.Context, key string, userID uuid.UUID, now time.Time) (*repository.IdempotencyCacheEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.entries[userID.String()+key]
	if !ok || now.After(e.ExpiresAt) {
		return nil, nil
	}
	return e, nil
}

func (m *memoryIdempotencyRepo) Set(_ context.Context, e *repository.IdempotencyCacheEntry) error {
	m.entries[e.UserID.String()+e.Key] = e
	return nil
}

func idempotentRequest(userID uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/receipts", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(auth.ContextWithUserID(req.Context(), userID))
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	repo := newMemoryIdempotencyRepo()
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler.RespondSuccess(w, http.StatusCreated, map[string]int{"receipt": calls})
	})
	h := Idempotency(repo)(next)
	userID := uuid.New()
	body := `{"apartment_id":"a","amount":100}`

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest(userID, "pago-1", body))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest(userID, "pago-1", body))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	other := httptest.NewRecorder()
	h.ServeHTTP(other, idempotentRequest(uuid.New(), "pago-1", body))
	assert.Equal(t, 2, calls, "keys are scoped per user")
	assert.Empty(t, other.Header().Get("X-Idempotent-Replayed"))
}

func TestIdempotency(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		seed       bool
		body       string
		nextStatus int
		getErr     error
		wantStatus int
		wantCode   string
		wantStored bool
	}{
		{name: "missing key", key: "", body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "MISSING_IDEMPOTENCY_KEY"},
		{name: "key too long", key: strings.Repeat("k", 256), body: `{}`, wantStatus: http.StatusBadRequest, wantCode: "MISSING_IDEMPOTENCY_KEY"},
		{name: "same key different body", key: "k1", seed: true, body: `{"amount":999}`, wantStatus: http.StatusConflict, wantCode: "IDEMPOTENCY_CONFLICT"},
		{name: "failed response is not stored", key: "k2", body: `{}`, nextStatus: http.StatusUnprocessableEntity, wantStatus: http.StatusUnprocessableEntity},
		{name: "successful response is stored", key: "k3", body: `{}`, nextStatus: http.StatusCreated, wantStatus: http.StatusCreated, wantStored: true},
		{name: "cache unavailable", key: "k4", body: `{}`, getErr: errors.New("database is locked"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userID := uuid.New()
			repo := newMemoryIdempotencyRepo()
			repo.getErr = tc.getErr
			if tc.seed {
				repo.entries[userID.String()+tc.key] = &repository.IdempotencyCacheEntry{
					Key:         tc.key,
					UserID:      userID,
					RequestHash: computeHash(http.MethodPost, "/api/v1/transactions/receipts", []byte(`{"amount":100}`)),
					StatusCode:  http.StatusCreated,
					ExpiresAt:   time.Now().Add(time.Hour),
				}
			}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.nextStatus)
			})

			rec := httptest.NewRecorder()
			Idempotency(repo)(next).ServeHTTP(rec, idempotentRequest(userID, tc.key, tc.body))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, errorCode(t, rec))
			}
			if !tc.seed {
				_, stored := repo.entries[userID.String()+tc.key]
				assert.Equal(t, tc.wantStored, stored)
			}
		})
	}
}

func TestIdempotency_SkipsReads(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	Idempotency(newMemoryIdempotencyRepo())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecovery(t *testing.T) {
	before := testutil.ToFloat64(metrics.Panics)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	})

	rec := httptest.NewRecorder()
	Recovery(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.Panics))
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/api/v1/apartments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	counter := metrics.HTTPRequests.WithLabelValues("/api/v1/apartments/{id}", http.MethodGet, "204")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{uuid.NewString(), uuid.NewString()} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/apartments/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestTracing(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TraceIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	Tracing(next).ServeHTTP(rec, req)
	assert.Equal(t, "req-123", got)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	Tracing(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestLogging(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "success", path: "/api/v1/apartments", status: http.StatusOK, wantLevel: "INFO"},
		{name: "client error", path: "/api/v1/apartments/x", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", path: "/api/v1/dashboard", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "health probe is quiet", path: "/health", status: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))

			var ctxLogged bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxLogged = logging.FromContext(r.Context()) != slog.Default()
				w.WriteHeader(tc.status)
				w.Write([]byte("ok"))
			})

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			Tracing(Logging(next)).ServeHTTP(httptest.NewRecorder(), req)

			if tc.wantLevel == "" {
				assert.Empty(t, buf.String())
				assert.False(t, ctxLogged)
				return
			}
			assert.True(t, ctxLogged)
			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, tc.wantLevel, rec["level"])
			assert.Equal(t, float64(tc.status), rec["status"])
			assert.Equal(t, float64(2), rec["bytes"])
			assert.NotEmpty(t, rec["request_id"])
		})
	}
}
