package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthEnabled checks if a bearer token is configured
func (s *Server) AuthEnabled() bool {
	return s.cfg != nil && s.cfg.Server.Token != ""
}

// IsAuthenticated checks the Authorization header against the token
func (s *Server) IsAuthenticated(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	token = strings.TrimSpace(token)
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.Server.Token)) == 1
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.AuthEnabled() {
			next.ServeHTTP(w, r)
			return
		}

		if !s.IsAuthenticated(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
