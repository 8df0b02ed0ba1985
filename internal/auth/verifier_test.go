package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func TestDevModeTokens(t *testing.T) {
	v := &Verifier{Mode: "dev"}
	p, err := v.Verify("admin")
	if err != nil || p.Role != "admin" || !p.IsAdmin() {
		t.Fatalf("role token: %+v, %v", p, err)
	}
	p, err = v.Verify("alice:viewer")
	if err != nil || p.Subject != "alice" || p.Role != "viewer" || p.IsAdmin() {
		t.Fatalf("subject:role token: %+v, %v", p, err)
	}
	if _, err := v.Verify(""); err == nil {
		t.Fatal("empty token should fail")
	}
}

func signHS256(t *testing.T, secret, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(header + "." + body))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return header + "." + body + "." + sig
}

func TestHMACMode(t *testing.T) {
	v := &Verifier{Mode: "hmac", HMACSecret: []byte("topsecret"), RoleClaim: "role"}
	tok := signHS256(t, "topsecret", `{"sub":"alice","role":"admin"}`)
	p, err := v.Verify(tok)
	if err != nil || p.Subject != "alice" || !p.IsAdmin() {
		t.Fatalf("valid token: %+v, %v", p, err)
	}

	bad := signHS256(t, "wrongsecret", `{"sub":"alice","role":"admin"}`)
	if _, err := v.Verify(bad); err == nil {
		t.Fatal("wrong secret should fail")
	}
	noRole := signHS256(t, "topsecret", `{"sub":"alice"}`)
	if _, err := v.Verify(noRole); err == nil {
		t.Fatal("missing role claim should fail")
	}
	if _, err := v.Verify("not.a.token.at.all"); err == nil {
		t.Fatal("malformed token should fail")
	}
}
