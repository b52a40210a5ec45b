package adapthttp

import (
	"context"
	"net/http"
	"time"

	"secrets/internal/app"
	"secrets/internal/domain"

	"github.com/google/uuid"
)

type contextKey string

const (
	identityContextKey  contextKey = "identity"
	requestIDContextKey contextKey = "request_id"
)

// identityFrom returns the account identity restored by requireSession.
func identityFrom(ctx context.Context) string {
	v, _ := ctx.Value(identityContextKey).(string)
	return v
}

func (s *Server) sessionFromRequest(r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, app.ErrSessionInvalid
	}
	return s.auth.Restore(r.Context(), cookie.Value)
}

// requireSession restores the session cookie into request-scoped identity.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			if app.IsUserError(err) {
				s.clearSessionCookie(w)
			}
			if isBrowserForm(r) {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			writeError(w, statusFor(err), err)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, sess.AccountIdentity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags each request with an ID and logs its outcome.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), requestIDContextKey, reqID)
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.log.InfoContext(ctx, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", reqID,
		)
	})
}
