package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys in this package, so
// no other package can read or shadow the session value.
type contextKey string

const sessionIDKey contextKey = "sessionID"

// RequireSession enforces a valid session on data routes.
//
// It reads the session token from the HttpOnly cookie, validates it, and
// stores the session ID in the request context. Missing or invalid tokens
// end the chain with 401 and the client shows the password prompt again.
func RequireSession(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := extractSessionID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"password required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext retrieves the session ID set by RequireSession.
// Returns ("", false) on routes where no session was established.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

func extractSessionID(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
