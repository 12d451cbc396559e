package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const TokenLifetime = 72 * time.Hour

// GenerateToken signs a HS256 token carrying the tenant id.
func GenerateToken(tenantID, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET environment variable is not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": tenantID,
		"exp":     time.Now().Add(TokenLifetime).Unix(),
	})

	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the tenant id it carries.
func ParseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	tenantID, ok := claims["user_id"].(string)
	if !ok || tenantID == "" {
		return "", errors.New("invalid token claims")
	}
	return tenantID, nil
}
