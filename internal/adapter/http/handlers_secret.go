package adapthttp

import (
	"net/http"
)

func (s *Server) handleSecret(w http.ResponseWriter, r *http.Request) {
	identity := identityFrom(r.Context())

	switch r.Method {
	case http.MethodGet:
		secret, err := s.secrets.Get(r.Context(), identity)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"secret": secret})

	case http.MethodPost:
		f, err := readFields(w, r, "secret")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request"})
			return
		}
		if err := s.secrets.Submit(r.Context(), identity, f["secret"]); err != nil {
			if isBrowserForm(r) {
				s.fail(w, r, "/submit", statusFor(err), "Could not save your secret. Please try again.")
				return
			}
			writeError(w, statusFor(err), err)
			return
		}
		if isBrowserForm(r) {
			http.Redirect(w, r, "/secrets", http.StatusSeeOther)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
