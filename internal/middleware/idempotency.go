package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/repository"
)

type idempotencyRepository interface {
	Get(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
}

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "X-Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
	maxIdempotencyKey = 255
)

// Idempotency replays the stored response of a request already served under the same
// Idempotency-Key, so a retried payment is never recorded twice. Reusing a key with a
// different body is a conflict. Only 2xx responses are stored; a failed attempt can be
// retried with the same key.
func Idempotency(repo idempotencyRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyHeader)
			if key == "" || len(key) > maxIdempotencyKey {
				handler.RespondAppError(w, handler.ErrMissingIdempotencyKey, nil)
				return
			}
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			hash := computeHash(r.Method, r.URL.Path, body)

			ctx := logging.With(r.Context(), "idempotency_key", key)
			log := logging.FromContext(ctx)

			cached, err := repo.Get(ctx, key, userID, time.Now())
			if err != nil {
				log.Error("idempotency lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if cached != nil {
				if cached.RequestHash != hash {
					handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
					return
				}
				replay(w, cached)
				return
			}

			cw := &captureWriter{statusRecorder: statusRecorder{ResponseWriter: w, status: http.StatusOK}}
			next.ServeHTTP(cw, r.WithContext(ctx))
			if cw.status < 200 || cw.status > 299 {
				return
			}

			now := time.Now().UTC()
			err = repo.Set(ctx, &repository.IdempotencyCacheEntry{
				Key:          key,
				UserID:       userID,
				RequestHash:  hash,
				StatusCode:   cw.status,
				ResponseBody: cw.body.Bytes(),
				CreatedAt:    now,
				ExpiresAt:    now.Add(idempotencyTTL),
			})
			if err != nil {
				log.Error("idempotency store failed", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, e *repository.IdempotencyCacheEntry) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(e.StatusCode)
	w.Write(e.ResponseBody)
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	io.WriteString(h, method)
	io.WriteString(h, path)
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// captureWriter keeps a copy of the body written through it.
type captureWriter struct {
	statusRecorder
	body bytes.Buffer
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.body.Write(b)
	return c.statusRecorder.Write(b)
}
