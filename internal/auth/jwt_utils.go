package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Manager signs and checks operator tokens with one HMAC secret.
type Manager struct {
	key []byte
	ttl time.Duration
}

// NewManager uses secret as the signing key. An empty secret gets a random
// one, so tokens stop working when the process restarts.
func NewManager(secret string, ttl time.Duration) *Manager {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		secret = hex.EncodeToString(buf)
		log.Println("⚠️ JWT_SECRET is not set, using a random key for this run")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{key: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed JWT for a user
func (m *Manager) GenerateToken(userID uint, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateToken checks if a token is fake or expired
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
