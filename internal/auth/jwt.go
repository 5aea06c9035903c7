package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims structure
type Claims struct {
	UserID    int64  `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT operations
type JWTManager struct {
	secret   string
	issuer   string
	audience string
	expiry   time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret, issuer, audience string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		expiry:   expiry,
	}
}

// ValidateConfig checks the manager's settings before the server starts
// serving traffic.
func (j *JWTManager) ValidateConfig() error {
	if j.secret == "" {
		return errors.New("jwt secret is required")
	}
	if len(j.secret) < 16 {
		return errors.New("jwt secret must be at least 16 characters")
	}
	if j.issuer == "" {
		return errors.New("jwt issuer is required")
	}
	if j.audience == "" {
		return errors.New("jwt audience is required")
	}
	if j.expiry <= 0 {
		return errors.New("jwt expiry must be positive")
	}
	return nil
}

// Expiry returns the configured token lifetime
func (j *JWTManager) Expiry() time.Duration {
	return j.expiry
}

// GenerateToken creates a new JWT token bound to one session
func (j *JWTManager) GenerateToken(userID int64, email, role, sessionID string) (string, error) {
	if userID <= 0 {
		return "", errors.New("user ID must be positive")
	}
	if role == "" {
		return "", errors.New("role is required")
	}
	if sessionID == "" {
		return "", errors.New("session ID is required")
	}

	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Audience:  []string{j.audience},
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

// ValidateToken validates and parses a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// HasRole checks if the token carries any of the required roles
func (c *Claims) HasRole(requiredRoles ...string) bool {
	for _, required := range requiredRoles {
		if c.Role == required {
			return true
		}
	}
	return false
}
