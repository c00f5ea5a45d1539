// Package auth verifies bearer tokens issued by the hosted auth provider
// and resolves them to an acting profile.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"gorm.io/gorm"
)

var (
	ErrMissingToken = errors.New("auth: missing bearer token")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrNoProfile    = errors.New("auth: no profile for subject")
)

// Claims is the token payload. The subject is the profile ID.
type Claims struct {
	jwt.RegisteredClaims
}

// Sign issues a token for the given profile ID, valid for ttl. Used by the
// CLI and by tests; production tokens come from the auth provider with the
// same shared secret.
func Sign(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its subject.
func Verify(secret, tokenString string) (string, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

// Resolve turns a bearer token into an acting profile. The Authorization
// header value may carry the "Bearer " prefix or be the bare token.
func Resolve(db *gorm.DB, secret, header string) (task.Actor, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
	if raw == "" {
		return task.Actor{}, ErrMissingToken
	}
	subject, err := Verify(secret, raw)
	if err != nil {
		return task.Actor{}, err
	}
	var p models.Profile
	if err := db.Where("id = ?", subject).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task.Actor{}, fmt.Errorf("%w: %s", ErrNoProfile, subject)
		}
		return task.Actor{}, fmt.Errorf("auth: load profile %s: %w", subject, err)
	}
	return task.Actor{ID: p.ID, Role: p.Role}, nil
}
