package ports

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Apurer/fabric-inventory/internal/domains/access/domain"
)

// ErrUnknownCredential is returned when a token does not resolve to a live credential.
var ErrUnknownCredential = errors.New("unknown or expired credential")

// CredentialStore resolves bearer tokens issued by the authentication collaborator.
type CredentialStore interface {
	Resolve(ctx context.Context, token string) (*domain.Caller, error)
	Save(ctx context.Context, credential domain.Credential) error
	Revoke(ctx context.Context, token string) error
}

// HashToken derives the storage key for a token so plaintext tokens are never persisted.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}
