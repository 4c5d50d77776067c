package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// SessionCookie is the name of the HttpOnly cookie carrying the session
// token.
const SessionCookie = "leadboard_session"

// sessionLifetime is how long a login lasts before the password prompt
// returns.
const sessionLifetime = 24 * time.Hour

const issuer = "leadboard"

// TokenService signs and validates session tokens.
//
// Tokens are stateless: the server keeps no session table. Everything a
// session is (its ID and expiry) lives inside the signed token, so a
// restart logs nobody out and no cleanup job is needed.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate creates a signed session token. The subject is a fresh xid:
// there is only one dashboard user, but a distinct ID per login keeps
// sessions distinguishable in logs.
func (s *TokenService) Generate() (string, error) {
	return s.GenerateWithDuration(sessionLifetime)
}

// GenerateWithDuration creates a token with a custom lifetime. Used by
// tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   xid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning the session ID.
// Restricting the accepted algorithms prevents algorithm-confusion
// attacks; the issuer check rejects tokens minted by other apps sharing
// the secret.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return c.Subject, nil
}
