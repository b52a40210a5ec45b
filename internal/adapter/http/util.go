package adapthttp

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"secrets/internal/app"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err to the client using only its user-facing message.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": app.UserMessage(err)})
}

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrAccountNotFound), errors.Is(err, app.ErrInvalidPassword),
		errors.Is(err, app.ErrSessionInvalid), errors.Is(err, app.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrAlreadyRegistered):
		return http.StatusConflict
	case errors.Is(err, app.ErrIdentityRequired), errors.Is(err, app.ErrPasswordRequired),
		errors.Is(err, app.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrProviderError):
		return http.StatusBadGateway
	case errors.Is(err, app.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isBrowserForm reports whether r came from an HTML form or page navigation
// rather than an API client, so responses should redirect instead of JSON.
func isBrowserForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		return true
	}
	return ct == "" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

// readFields extracts string fields from a form-encoded or JSON body.
func readFields(w http.ResponseWriter, r *http.Request, keys ...string) (map[string]string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	out := make(map[string]string, len(keys))

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		for _, k := range keys {
			out[k] = r.FormValue(k)
		}
		return out, nil
	}

	var data map[string]any
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	for _, k := range keys {
		if v, ok := data[k].(string); ok {
			out[k] = v
		}
	}
	return out, nil
}

func randomString(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// protectedPages are only served to requests carrying a live session.
var protectedPages = map[string]bool{
	"/secrets": true,
	"/submit":  true,
}

// pagesFromDisk serves dir, mapping extensionless paths such as /login to
// login.html and / to index.html.
func (s *Server) pagesFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean("/" + r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		// /secrets.html is the same page as /secrets.
		if protectedPages[strings.TrimSuffix(reqPath, ".html")] {
			if _, err := s.sessionFromRequest(r); err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
		}

		page := filepath.Join(dir, filepath.FromSlash(reqPath)+".html")
		if _, err := os.Stat(page); err == nil {
			http.ServeFile(w, r, page)
			return
		}

		fileServer.ServeHTTP(w, r)
	})
}
