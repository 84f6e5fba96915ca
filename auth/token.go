// api/auth/token.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/spf13/viper"

	fintrack_errors "github.com/fintrack-app/api/errors"
)

// TokenService mints and verifies the HS256 bearer tokens the governor's
// Authenticate stage consumes. The Google OAuth handshake that precedes
// token minting lives outside this layer.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService() *TokenService {
	ttl := viper.GetDuration("auth.tokenTTL")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{
		secret: []byte(viper.GetString("auth.jwtSecret")),
		ttl:    ttl,
	}
}

// Issue mints a token whose subject is the user ID.
func (t *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	claims := jwt.StandardClaims{
		Subject:   userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(t.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer header value and returns the authenticated user ID.
// The sentinel errors distinguish missing, expired, and otherwise invalid
// tokens so the caller can surface them verbatim.
func (t *TokenService) Verify(authorization string) (string, error) {
	if authorization == "" {
		return "", fintrack_errors.ErrMissingToken
	}
	tokenString := strings.TrimPrefix(authorization, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", fintrack_errors.ErrExpiredToken
		}
		return "", fintrack_errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fintrack_errors.ErrInvalidToken
	}
	return claims.Subject, nil
}
