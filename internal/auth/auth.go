// Package auth issues and verifies the bearer tokens that identify a user to
// every other service.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
)

var ErrInvalidToken = apperr.Auth("Invalid or expired token")

type Claims struct {
	jwt.RegisteredClaims
}

// Token is what a successful login hands back.
type Token struct {
	Value     string
	ExpiresIn time.Duration
}

type Gateway struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGateway(secret string, ttl time.Duration) *Gateway {
	return &Gateway{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (g *Gateway) Issue(userID uuid.UUID) (Token, error) {
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return Token{}, fmt.Errorf("signing token: %w", err)
	}

	return Token{Value: signed, ExpiresIn: g.ttl}, nil
}

// Parse verifies the token and returns the user it was issued to.
func (g *Gateway) Parse(token string) (uuid.UUID, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, errors.Join(ErrInvalidToken, err)
	}

	return id, nil
}
