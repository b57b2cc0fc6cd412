package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/auth"
	"github.com/josh-kwaku/edificio/internal/domain"
)

type mockUsers struct {
	users map[string]*domain.User
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("correcta-123")
	require.NoError(t, err)

	active := &domain.User{ID: uuid.New(), Email: "admin@edificio.test", Name: "Admin", PasswordHash: hash, Status: domain.UserStatusActive}
	disabled := &domain.User{ID: uuid.New(), Email: "baja@edificio.test", Name: "Baja", PasswordHash: hash, Status: domain.UserStatusDisabled}
	users := &mockUsers{users: map[string]*domain.User{active.Email: active, disabled.Email: disabled}}
	issuer := auth.NewIssuer("test-secret", time.Hour)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "valid credentials", body: `{"email":"Admin@Edificio.test","password":"correcta-123"}`, wantStatus: http.StatusOK},
		{name: "wrong password", body: `{"email":"admin@edificio.test","password":"otra-clave"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "unknown email", body: `{"email":"nadie@edificio.test","password":"correcta-123"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "disabled user", body: `{"email":"baja@edificio.test","password":"correcta-123"}`, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "invalid email", body: `{"email":"admin","password":"x"}`, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(users, issuer)

			rec := httptest.NewRecorder()
			h.Login(rec, newRequest(http.MethodPost, "/api/v1/auth/login", tc.body, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			if tc.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				return
			}

			got := dataAs[loginResponse](t, resp)
			assert.Equal(t, active.ID, got.User.ID)
			claims, err := issuer.Validate(got.Token)
			require.NoError(t, err)
			assert.Equal(t, active.ID, claims.UserID)
			assert.True(t, got.ExpiresAt.After(time.Now()))
		})
	}
}

func TestMe(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "admin@edificio.test", Name: "Admin", Status: domain.UserStatusActive}
	h := NewAuthHandler(&mockUsers{users: map[string]*domain.User{user.Email: user}}, auth.NewIssuer("s", time.Hour))

	t.Run("with user in context", func(t *testing.T) {
		req := newRequest(http.MethodGet, "/api/v1/auth/me", "", nil)
		req = req.WithContext(auth.ContextWithUserID(req.Context(), user.ID))
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.Email, dataAs[userDTO](t, decodeResponse(t, rec)).Email)
	})

	t.Run("without user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Me(rec, newRequest(http.MethodGet, "/api/v1/auth/me", "", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "MISSING_TOKEN", decodeResponse(t, rec).Error.Code)
	})
}
