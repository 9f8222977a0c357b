// Package authmw provides HTTP middleware for API key authentication and
// org resolution.
package authmw

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Principal identifies the authenticated caller and the org they act for.
type Principal struct {
	OrgID  string
	UserID string
}

// Verifier resolves a bearer token to a principal.
type Verifier interface {
	Verify(token string) (*Principal, bool)
}

// StaticVerifier verifies tokens against a fixed key set. Comparison is
// constant-time per key to prevent timing side-channel attacks.
type StaticVerifier struct {
	keys []staticKey
}

type staticKey struct {
	token     []byte
	principal Principal
}

// NewStaticVerifier creates a verifier from token -> principal pairs.
func NewStaticVerifier(keys map[string]Principal) *StaticVerifier {
	v := &StaticVerifier{}
	for token, p := range keys {
		v.keys = append(v.keys, staticKey{token: []byte(token), principal: p})
	}
	return v
}

// Verify implements Verifier. Every key is compared so the timing does not
// reveal which prefix matched.
func (v *StaticVerifier) Verify(token string) (*Principal, bool) {
	got := []byte(token)
	var match *Principal
	for i := range v.keys {
		if subtle.ConstantTimeCompare(got, v.keys[i].token) == 1 {
			match = &v.keys[i].principal
		}
	}
	if match == nil {
		return nil, false
	}
	cp := *match
	return &cp, true
}

type principalKey struct{}

// FromContext extracts the authenticated principal set by Authenticate.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// Authenticate returns middleware that validates the Authorization header
// contains a Bearer token the verifier recognizes, and attaches the
// resolved principal to the request context.
func Authenticate(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			if !strings.HasPrefix(auth, "Bearer ") {
				unauthorized(w, "missing or malformed authorization header")
				return
			}

			p, ok := v.Verify(auth[len("Bearer "):])
			if !ok {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
