// Package auth implements the dashboard's password gate and the session
// tokens issued once it is passed.
//
// The dashboard has exactly one shared password, held in configuration.
// A successful check issues a signed session token carried in an HttpOnly
// cookie; every data route requires that token. A failed check is a
// retry prompt for the user, never a server error.
package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Gate verifies the shared dashboard password.
//
// Two configurations are supported: a plain password compared in constant
// time, or a bcrypt hash (preferred for deployments where the config
// store is readable by more people than the dashboard is).
type Gate struct {
	password string // plain password, compared with subtle.ConstantTimeCompare
	hash     string // bcrypt hash; takes precedence when set
}

// NewGate builds a Gate from the configured password or bcrypt hash. At
// least one must be set.
func NewGate(password, hash string) (*Gate, error) {
	if password == "" && hash == "" {
		return nil, errors.New("auth: no dashboard password configured")
	}
	if hash != "" {
		// Fail at startup on a malformed hash, not on first login.
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("probe")); err != nil &&
			!errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errors.New("auth: DASHBOARD_PASSWORD_HASH is not a valid bcrypt hash")
		}
	}
	return &Gate{password: password, hash: hash}, nil
}

// Check reports whether the attempt matches the configured password.
func (g *Gate) Check(attempt string) bool {
	if g.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(g.hash), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.password), []byte(attempt)) == 1
}

// HashPassword produces a bcrypt hash suitable for
// DASHBOARD_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
