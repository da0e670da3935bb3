// internal/adapters/out/token/secret_token_source_sm.go
package token

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errSecretSourceNotConfigured = errors.New("token: secret manager source not configured")

// SecretManagerSource resolves the bearer credential from Secret Manager.
// Used by kiosk builds whose service account is provisioned a long-lived API
// token (secret name example: projects/<p>/secrets/cart-api-token/versions/latest).
//
// The resolved value is cached in-process; Evict drops the cache so the next
// call re-reads the secret (operators rotate the version after a 401).
type SecretManagerSource struct {
	sm   *secretmanager.Client
	name string

	mu     sync.Mutex
	cached string
}

// NewSecretManagerSource dials Secret Manager with ADC.
// name must be a full version resource path.
func NewSecretManagerSource(ctx context.Context, name string) (*SecretManagerSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errSecretSourceNotConfigured
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &SecretManagerSource{sm: sm, name: name}, nil
}

func (s *SecretManagerSource) Token(ctx context.Context) (string, bool) {
	if s == nil || s.sm == nil {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != "" {
		return s.cached, true
	}

	resp, err := s.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: s.name})
	if err != nil {
		log.Printf("[token] AccessSecretVersion failed (%s): %v", s.name, err)
		return "", false
	}
	if resp == nil || resp.Payload == nil {
		log.Printf("[token] empty secret payload (%s)", s.name)
		return "", false
	}

	s.cached = strings.TrimSpace(string(resp.Payload.Data))
	return s.cached, s.cached != ""
}

// Evict drops the cached value; the secret itself stays put.
func (s *SecretManagerSource) Evict() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.cached = ""
	s.mu.Unlock()
	log.Printf("[token] cached secret credential dropped; will re-read %s", s.name)
}

func (s *SecretManagerSource) Close() error {
	if s == nil || s.sm == nil {
		return nil
	}
	return s.sm.Close()
}
