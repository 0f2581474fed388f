package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/access/ports"
)

var _ ports.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is an in-memory CredentialStore implementation.
type CredentialStore struct {
	mu          sync.RWMutex
	credentials map[string]domain.Credential
	now         func() time.Time
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{credentials: map[string]domain.Credential{}, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (s *CredentialStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *CredentialStore) Resolve(_ context.Context, token string) (*domain.Caller, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ports.ErrUnknownCredential
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.credentials[ports.HashToken(token)]
	if !ok || cred.Expired(s.now()) {
		return nil, ports.ErrUnknownCredential
	}
	caller := cred.Caller
	caller.Scopes = append([]domain.Scope{}, cred.Caller.Scopes...)
	return &caller, nil
}

func (s *CredentialStore) Save(_ context.Context, credential domain.Credential) error {
	if err := credential.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := credential
	clone.Caller.Scopes = append([]domain.Scope{}, credential.Caller.Scopes...)
	s.credentials[ports.HashToken(credential.Token)] = clone
	return nil
}

func (s *CredentialStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, ports.HashToken(token))
	return nil
}
