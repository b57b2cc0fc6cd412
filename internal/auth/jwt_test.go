package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func TestIssueAndValidate(t *testing.T) {
	issuer := NewIssuer(testSecret, 24*time.Hour)
	want := Claims{UserID: uuid.New(), Email: "admin@edificio.test", Name: "Administración"}

	token, expires, err := issuer.Issue(want)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expires, time.Minute)

	got, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestValidate(t *testing.T) {
	claims := Claims{UserID: uuid.New(), Email: "admin@edificio.test"}

	valid, _, err := NewIssuer(testSecret, time.Hour).Issue(claims)
	require.NoError(t, err)
	expired, _, err := NewIssuer(testSecret, -time.Hour).Issue(claims)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   claims.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	foreignSigned, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{name: "expired token", token: expired, secret: testSecret, wantErrIs: jwt.ErrTokenExpired},
		{name: "wrong secret", token: valid, secret: "wrong-secret", wantErrIs: jwt.ErrTokenSignatureInvalid},
		{name: "malformed token", token: "not.a.valid.jwt", secret: testSecret, wantErrIs: jwt.ErrTokenMalformed},
		{name: "empty token", token: "", secret: testSecret, wantErrIs: jwt.ErrTokenMalformed},
		{name: "other issuer", token: foreignSigned, secret: testSecret, wantErrIs: jwt.ErrTokenInvalidIssuer},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIssuer(tc.secret, time.Hour).Validate(tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidate_RejectsNonHMAC(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewIssuer(testSecret, time.Hour).Validate(signed)
	require.Error(t, err)
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("corta")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	hash, err := HashPassword("una-clave-larga")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "una-clave-larga"))
	assert.False(t, CheckPassword(hash, "otra-clave-larga"))
}
