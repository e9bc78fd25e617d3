// Package auth issues and verifies the anonymous session tokens used by
// the storefront and the admin panel.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

type Session struct {
	ID        string    `json:"sessionId"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Issue signs a new anonymous session for role.
func Issue(secret, role string, ttl time.Duration, now time.Time) (Session, error) {
	if secret == "" {
		return Session{}, errors.New("jwt secret is empty")
	}

	sessionID := uuid.NewString()
	expiresAt := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  sessionID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return Session{}, err
	}
	return Session{ID: sessionID, Role: role, Token: signed, ExpiresAt: time.Unix(expiresAt.Unix(), 0)}, nil
}

// Parse verifies raw and returns its session id and role.
func Parse(secret, raw string) (sessionID, role string, err error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	sessionID, _ = claims["sub"].(string)
	if sessionID == "" {
		return "", "", fmt.Errorf("%w: sub claim missing", ErrInvalidToken)
	}
	role, _ = claims["role"].(string)
	return sessionID, role, nil
}
