package middleware

import (
	"net/http"
	"strings"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/handler"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type tokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Auth rejects requests without a valid bearer token and adds the administrator's id
// to the request context and logger.
func Auth(tokens tokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logging.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
