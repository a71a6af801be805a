package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tabmind/tabmind-server/config"
	"github.com/tabmind/tabmind-server/internal/types"
)

// TokenIssuer signs and verifies the stateless session tokens. The secret is
// fixed for the process lifetime; rotating it (a restart with a new config
// value) invalidates every outstanding token.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
		ttl:    ttl,
	}
}

// Issue produces a signed HS256 token asserting the subject's identity and
// role, expiring ttl from now.
func (t *TokenIssuer) Issue(userID, role string) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Malformed structure, signature
// mismatch and expiry all collapse to ErrUnauthenticated so a caller cannot
// distinguish which check failed.
func (t *TokenIssuer) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, types.ErrUnauthenticated
	}
	if claims.UserID == "" {
		return nil, types.ErrUnauthenticated
	}
	if t.issuer != "" && claims.Issuer != t.issuer {
		return nil, types.ErrUnauthenticated
	}
	return claims, nil
}
