package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the validated result of a token lookup.
type Identity struct {
	ID    string
	Email string
}

// Provider validates a bearer token and resolves the user behind it.
type Provider interface {
	GetUser(ctx context.Context, token string) (Identity, error)
}

// JWTProvider validates and issues HS256 tokens carrying the user id in
// the sub claim.
type JWTProvider struct {
	secret []byte
}

func NewJWTProvider(secret string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret)}
}

// GetUser parses and verifies a token, returning the identity encoded in
// its claims.
func (p *JWTProvider) GetUser(_ context.Context, tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("invalid token claims")
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return Identity{}, fmt.Errorf("invalid token: missing subject")
	}

	return Identity{ID: userID, Email: email}, nil
}

// IssueToken signs a token for the given identity.
func (p *JWTProvider) IssueToken(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   identity.ID,
		"email": identity.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// UserIDForEmail derives a stable opaque user id from an email address,
// so history survives token rotation.
func UserIDForEmail(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)).String()
}
