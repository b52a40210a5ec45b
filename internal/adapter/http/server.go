package adapthttp

import (
	"log/slog"
	"net/http"

	"secrets/internal/app"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth          *app.AuthService
	secrets       *app.SecretService
	idp           IdentityProvider
	states        *stateSigner
	log           *slog.Logger
	webDir        string
	secureCookies bool
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, secrets *app.SecretService, webDir string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{auth: auth, secrets: secrets, webDir: webDir, log: log}
}

// WithIdentityProvider enables federated login. stateKey signs the OAuth
// state parameter.
func (s *Server) WithIdentityProvider(idp IdentityProvider, stateKey []byte) *Server {
	s.idp = idp
	s.states = newStateSigner(stateKey)
	return s
}

// WithSecureCookies marks every cookie the server sets as Secure.
func (s *Server) WithSecureCookies(on bool) *Server {
	s.secureCookies = on
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/register", s.handleRegister)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/flash", s.handleFlash)

	api.Handle("/me", s.requireSession(http.HandlerFunc(s.handleMe)))
	api.Handle("/secret", s.requireSession(http.HandlerFunc(s.handleSecret)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.HandleFunc("/logout", s.handleLogout)
	root.HandleFunc("/auth/google", s.handleSSOLogin)
	root.HandleFunc("/auth/google/secrets", s.handleSSOCallback)
	root.Handle("/", s.pagesFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}
