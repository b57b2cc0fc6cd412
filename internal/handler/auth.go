package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

type userReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

type tokenIssuer interface {
	Issue(c auth.Claims) (string, time.Time, error)
}

type AuthHandler struct {
	users  userReader
	tokens tokenIssuer
}

func NewAuthHandler(users userReader, tokens tokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      userDTO   `json:"user"`
}

type userDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondAppError(w, ErrInvalidCredentials, nil)
			return
		}
		RespondDomainError(w, err)
		return
	}

	if !user.Active() || !auth.CheckPassword(user.PasswordHash, req.Password) {
		logging.FromContext(r.Context()).Warn("rejected login", "user_id", user.ID)
		RespondAppError(w, ErrInvalidCredentials, nil)
		return
	}

	token, expiresAt, err := h.tokens.Issue(auth.Claims{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to issue token", "error", err, "user_id", user.ID)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	RespondSuccess(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserDTO(user),
	})
}

// Me returns the administrator the request token belongs to.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get user", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toUserDTO(user))
}
