package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oppkey/leadboard/internal/apperror"
	"github.com/oppkey/leadboard/internal/auth"
)

// SessionHandler runs the password gate and manages the session cookie.
type SessionHandler struct {
	gate   *auth.Gate
	tokens *auth.TokenService
	secure bool // Secure flag on the cookie; off for local http
	logger *slog.Logger
}

func NewSessionHandler(gate *auth.Gate, tokens *auth.TokenService, secure bool, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{gate: gate, tokens: tokens, secure: secure, logger: logger}
}

// HandleLogin checks the submitted password and, on success, sets the
// session cookie.
//
// HTTP: POST /api/login
// REQUEST BODY: {"password": "..."}
//
// A wrong password is a 401 with the standard error body; the client
// re-prompts. It is never logged at error level; wrong passwords are
// normal traffic on a shared-password dashboard.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("password", "invalid JSON body"))
		return
	}

	if !h.gate.Check(body.Password) {
		h.logger.Info("login rejected", slog.String("remote", r.RemoteAddr))
		writeError(w, apperror.Unauthorized("password incorrect"))
		return
	}

	token, err := h.tokens.Generate()
	if err != nil {
		h.logger.Error("issuing session token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/logout
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
