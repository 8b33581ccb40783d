// Package auth issues and verifies the bearer tokens clients present to
// resume a durable user identity across reconnects.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/0dayMonkey/drawlima-back/internal/domain"
)

type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Mint signs a reconnection token carrying the user id.
func (s *TokenService) Mint(uid domain.UserID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": string(uid),
		"exp":     time.Now().Add(s.ttl).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the user id carried by a valid token.
func (s *TokenService) Verify(tokenString string) (domain.UserID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	uid, ok := (*claims)["user_id"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("invalid user id in token")
	}
	return domain.UserID(uid), nil
}
