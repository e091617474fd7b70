package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevResolver validates HS256 tokens locally. It exists for development
// environments where no Supabase project is configured; production always
// talks to the provider.
type DevResolver struct {
	secret []byte
}

// NewDevResolver builds a local HS256 resolver.
func NewDevResolver(secret string) *DevResolver {
	return &DevResolver{secret: []byte(secret)}
}

type devClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Resolve parses and verifies the token signature and expiry.
func (r *DevResolver) Resolve(_ context.Context, token string) (*UserContext, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims := &devClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return r.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &UserContext{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// SignDevToken mints a token the DevResolver accepts. Test helper and dev
// tooling only.
func SignDevToken(secret, userID, email string, ttl time.Duration) (string, error) {
	claims := devClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
