// Package auth issues and verifies bearer tokens and carries the verified
// session through the request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tenderlink/models"
)

// Claims is the token payload: who the caller is and which role they hold.
type Claims struct {
	UserID int         `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens. Verification is stateless.
type TokenManager struct {
	secretKey     []byte
	tokenLifetime time.Duration
	now           func() time.Time
}

func NewTokenManager(secretKey string, lifetime time.Duration) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenLifetime: lifetime,
		now:           time.Now,
	}
}

// GenerateToken issues a token for the given user and role.
func (m *TokenManager) GenerateToken(userID int, role models.Role) (string, error) {
	now := m.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseToken verifies the signature, expiry and role of a token and returns
// the session it encodes.
func (m *TokenManager) ParseToken(tokenString string) (models.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return models.Session{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return models.Session{}, errors.New("token is not valid")
	}
	if claims.UserID <= 0 || !claims.Role.Valid() {
		return models.Session{}, errors.New("token carries no valid identity")
	}
	return models.Session{UserID: claims.UserID, Role: claims.Role}, nil
}
