package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"example.com/dictation/internal/ident"
)

var ErrExpired = errors.New("auth: token expired")

type Claims struct {
	UserID ident.ID `json:"user_id"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token. The client never signs for real; local test
// servers use it.
func Sign(secret []byte, userID ident.ID, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Inspect reads the claims of a server-issued token without checking the
// signature; the server does that on every request. Only the expiry is
// enforced here, with leeway to absorb clock skew.
func Inspect(token string, now time.Time, leeway time.Duration) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Add(-leeway)) {
		return claims, ErrExpired
	}
	return claims, nil
}
