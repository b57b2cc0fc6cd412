package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "edificio"

type Claims struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Issuer signs and checks administrator session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, expiry time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (i *Issuer) Issue(c Claims) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.expiry)
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   c.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: c.Email,
		Name:  c.Name,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("Issue: %w", err)
	}
	return signed, expires, nil
}

func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("Validate: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("Validate: invalid token claims")
	}

	userID, err := uuid.Parse(tc.Subject)
	if err != nil {
		return nil, fmt.Errorf("Validate: invalid subject in token: %w", err)
	}

	return &Claims{UserID: userID, Email: tc.Email, Name: tc.Name}, nil
}
