// Package auth provides bearer-token verification for admin endpoints.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// Verifier validates bearer tokens and extracts the role claim.
// Modes: dev (token is "role" verbatim, default) and hmac (HS256 JWT).
type Verifier struct {
	Mode       string
	HMACSecret []byte
	RoleClaim  string
}

// Principal is the authenticated caller identity.
type Principal struct {
	Role    string
	Subject string
}

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

func NewVerifierFromEnv() *Verifier {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if mode == "" {
		mode = "dev"
	}
	claim := os.Getenv("AUTH_ROLE_CLAIM")
	if claim == "" {
		claim = "role"
	}
	return &Verifier{
		Mode:       mode,
		HMACSecret: []byte(os.Getenv("AUTH_HMAC_SECRET")),
		RoleClaim:  claim,
	}
}

// Verify parses and validates a bearer token.
func (v *Verifier) Verify(token string) (Principal, error) {
	switch v.Mode {
	case "dev":
		// Dev tokens are "role" or "subject:role".
		if token == "" {
			return Principal{}, errors.New("auth: empty token")
		}
		if i := strings.IndexByte(token, ':'); i >= 0 {
			return Principal{Subject: token[:i], Role: token[i+1:]}, nil
		}
		return Principal{Role: token}, nil
	case "hmac":
		return v.verifyHS256(token)
	default:
		return Principal{}, errors.New("auth: unknown mode " + v.Mode)
	}
}

func (v *Verifier) verifyHS256(token string) (Principal, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Principal{}, errors.New("auth: malformed token")
	}
	signed := parts[0] + "." + parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Principal{}, errors.New("auth: bad signature encoding")
	}
	mac := hmac.New(sha256.New, v.HMACSecret)
	mac.Write([]byte(signed))
	if !hmac.Equal(mac.Sum(nil), sig) {
		return Principal{}, errors.New("auth: signature mismatch")
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Principal{}, errors.New("auth: bad payload encoding")
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Principal{}, errors.New("auth: bad claims")
	}
	p := Principal{}
	if s, ok := claims["sub"].(string); ok {
		p.Subject = s
	}
	if r, ok := claims[v.RoleClaim].(string); ok {
		p.Role = r
	}
	if p.Role == "" {
		return Principal{}, errors.New("auth: missing role claim")
	}
	return p, nil
}
