// internal/adapters/out/token/file_token_store.go
package token

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// FileStore holds the buyer's bearer credential in one file — the desktop
// analog of the token slot the web build keeps in localStorage.
//
// Policies:
//   - absent/empty file → no credential (never an error)
//   - a JWT whose exp has passed is treated as absent, so the client does not
//     spend a round trip on a guaranteed 401
//   - opaque (non-JWT) tokens are passed through untouched; some deployments
//     use session ids rather than JWTs
type FileStore struct {
	path string

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: strings.TrimSpace(path)}
}

// Token returns the held credential, if usable.
func (s *FileStore) Token(ctx context.Context) (string, bool) {
	if s == nil || s.path == "" {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[token] read %s failed: %v", s.path, err)
		}
		return "", false
	}

	tok := strings.TrimSpace(string(b))
	if tok == "" {
		return "", false
	}

	if expired(tok) {
		log.Printf("[token] held credential is expired; treating as absent")
		return "", false
	}

	return tok, true
}

// Set persists a fresh credential (written by the sign-in flow).
func (s *FileStore) Set(tok string) error {
	if s == nil || s.path == "" {
		return os.ErrInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return os.WriteFile(s.path, []byte(strings.TrimSpace(tok)+"\n"), 0o600)
}

// Evict discards the credential (called after the service answers 401).
func (s *FileStore) Evict() {
	if s == nil || s.path == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Printf("[token] evict %s failed: %v", s.path, err)
		return
	}
	log.Printf("[token] credential evicted")
}

// expired reports whether tok is a JWT whose exp claim has passed.
// The signature is NOT verified here — verification is the service's job;
// the client only wants to skip a request that is guaranteed to 401.
func expired(tok string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		// not a JWT → assume opaque session token, let the service decide
		return false
	}

	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
