// Package token issues and validates signed, time-limited session tokens.
//
// Tokens are HMAC-SHA256 signed JWTs whose subject is the user ID. The
// service is deliberately stateless: it never consults the user store, so a
// token for a deleted user still validates here. Callers (the auth
// middleware) must separately confirm the user exists.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the absolute token lifetime from issuance.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrMalformed is returned when a token cannot be parsed at all.
	ErrMalformed = errors.New("token is malformed")
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token has expired")
	// ErrSignatureInvalid is returned when a token was not signed with the
	// service's secret.
	ErrSignatureInvalid = errors.New("token signature is invalid")
)

// Service issues and validates session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates a token Service with the default 7-day TTL.
func NewService(secret []byte) *Service {
	return NewServiceWithTTL(secret, DefaultTTL)
}

// NewServiceWithTTL creates a token Service with an explicit TTL.
func NewServiceWithTTL(secret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token bound to the given user ID.
func (s *Service) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user ID is required")
	}

	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Validate parses and verifies a token, returning the bound user ID.
func (s *Service) Validate(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrSignatureInvalid
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrSignatureInvalid):
			return "", ErrSignatureInvalid
		default:
			return "", ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrMalformed
	}

	return claims.Subject, nil
}
