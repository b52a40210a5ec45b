// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"secrets/internal/app"
)

const (
	sessionCookieName = "session"
	stateCookieName   = "oauth_state"
	flashCookieName   = "flash"

	msgMissingCredentials = "Please enter your email and password."
	msgSSOFailed          = "Google sign-in failed. Please try again."
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := readFields(w, r, "username", "password")
	if err != nil || f["username"] == "" || f["password"] == "" {
		s.fail(w, r, "/login", http.StatusBadRequest, msgMissingCredentials)
		return
	}

	login, err := s.auth.AuthenticateLocal(r.Context(), f["username"], f["password"])
	if err != nil {
		s.fail(w, r, "/login", statusFor(err), app.UserMessage(err))
		return
	}
	s.succeed(w, r, login)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := readFields(w, r, "username", "password")
	if err != nil {
		s.fail(w, r, "/register", http.StatusBadRequest, msgMissingCredentials)
		return
	}

	login, err := s.auth.Register(r.Context(), f["username"], f["password"])
	if err != nil {
		// An existing account is sent to the login page, as the message says.
		target := "/register"
		if statusFor(err) == http.StatusConflict {
			target = "/login"
		}
		s.fail(w, r, target, statusFor(err), app.UserMessage(err))
		return
	}
	s.succeed(w, r, login)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	if cookie, cerr := r.Cookie(sessionCookieName); cerr == nil {
		err = s.auth.Logout(r.Context(), cookie.Value)
	}
	s.clearSessionCookie(w)

	if r.Method == http.MethodGet || isBrowserForm(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"identity": identityFrom(r.Context())})
}

// handleFlash returns and clears the pending flash message, if any.
func (s *Server) handleFlash(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if c, err := r.Cookie(flashCookieName); err == nil {
		if b, err := base64.RawURLEncoding.DecodeString(c.Value); err == nil {
			msg = string(b)
		}
		s.setCookie(w, flashCookieName, "", -1)
	}
	writeJSON(w, http.StatusOK, map[string]any{"error": msg})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.idp != nil,
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}

	nonce := randomString(16)
	state, err := s.states.Sign(nonce)
	if err != nil {
		s.log.ErrorContext(r.Context(), "sign oauth state", "err", err)
		s.fail(w, r, "/login", http.StatusInternalServerError, msgSSOFailed)
		return
	}
	s.setCookie(w, stateCookieName, nonce, int(stateTTL.Seconds()))
	http.Redirect(w, r, s.idp.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if s.idp == nil {
		http.Error(w, "sso disabled", http.StatusNotFound)
		return
	}
	ctx := r.Context()
	q := r.URL.Query()

	nonce := ""
	if c, err := r.Cookie(stateCookieName); err == nil {
		nonce = c.Value
	}
	s.setCookie(w, stateCookieName, "", -1)

	if e := q.Get("error"); e != "" {
		s.ssoFailed(w, r, fmt.Errorf("%w: provider returned %s", app.ErrProviderError, e))
		return
	}
	if err := s.states.Verify(q.Get("state"), nonce); err != nil {
		s.ssoFailed(w, r, fmt.Errorf("%w: %w", app.ErrProviderError, err))
		return
	}

	email, err := s.idp.Email(ctx, q.Get("code"))
	if err != nil {
		s.ssoFailed(w, r, fmt.Errorf("%w: %w", app.ErrProviderError, err))
		return
	}

	login, err := s.auth.AuthenticateFederated(ctx, email)
	if err != nil {
		// Already logged by the service.
		s.setFlash(w, msgSSOFailed)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	s.setSessionCookie(w, login)
	http.Redirect(w, r, "/secrets", http.StatusFound)
}

func (s *Server) ssoFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "federated login handshake failed", "err", err)
	s.setFlash(w, msgSSOFailed)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// succeed sets the session cookie and answers with a redirect for browser
// forms or the identity for API clients.
func (s *Server) succeed(w http.ResponseWriter, r *http.Request, login *app.Login) {
	s.setSessionCookie(w, login)
	if isBrowserForm(r) {
		http.Redirect(w, r, "/secrets", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"identity":  login.Account.Identity,
		"expiresAt": login.ExpiresAt.UTC(),
	})
}

// fail answers with a flash-and-redirect for browser forms or a JSON error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, target string, status int, msg string) {
	if isBrowserForm(r) {
		s.setFlash(w, msg)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, login *app.Login) {
	maxAge := int(time.Until(login.ExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	s.setCookie(w, sessionCookieName, login.Token, maxAge)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	s.setCookie(w, sessionCookieName, "", -1)
}

func (s *Server) setFlash(w http.ResponseWriter, msg string) {
	s.setCookie(w, flashCookieName, base64.RawURLEncoding.EncodeToString([]byte(msg)), 60)
}

// setCookie writes a host-only HttpOnly cookie. SameSite=Lax lets the session
// survive the cross-site redirect back from the identity provider.
func (s *Server) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}
