package authenticator

import (
	"crypto/subtle"
)

// Verifier decides whether a caller-supplied credential grants access
type Verifier interface {
	Verify(credential string) bool
}

// SharedSecret accepts exactly one configured secret
type SharedSecret struct {
	secret []byte
}

// NewSharedSecret creates a verifier for secret. An empty secret rejects everything.
func NewSharedSecret(secret string) *SharedSecret {
	return &SharedSecret{secret: []byte(secret)}
}

// Verify reports whether credential equals the configured secret
func (s *SharedSecret) Verify(credential string) bool {
	if len(s.secret) == 0 || credential == "" {
		return false
	}
	// ConstantTimeCompare returns 0 for differing lengths, so this is exact equality
	return subtle.ConstantTimeCompare([]byte(credential), s.secret) == 1
}
