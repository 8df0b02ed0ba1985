package api

import (
	"net/http"
	"strings"

	"fleetops/internal/auth"
)

// getPrincipal extracts the caller identity from the request.
// - If Authorization: Bearer is present, uses the configured verifier.
// - Else falls back to the X-Role header for dev.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return pr
		}
	}
	return auth.Principal{Role: r.Header.Get("X-Role")}
}
