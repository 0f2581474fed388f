package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	accessports "github.com/Apurer/fabric-inventory/internal/domains/access/ports"
)

var _ accessports.CredentialStore = (*CredentialStore)(nil)

// CredentialStore persists API credentials in PostgreSQL. Tokens are stored as sha256 hashes.
type CredentialStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCredentialStore wires a PostgreSQL-backed credential store. Caller owns DB lifecycle.
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db, now: time.Now}
}

type credentialRecord struct {
	TokenHash string         `gorm:"primaryKey;column:token_hash;size:64"`
	ActorID   string         `gorm:"column:actor_id;index"`
	ActorType string         `gorm:"column:actor_type;type:varchar(32)"`
	Scopes    pq.StringArray `gorm:"column:scopes;type:text[]"`
	ExpiresAt *time.Time     `gorm:"column:expires_at;index"`
	CreatedAt time.Time      `gorm:"column:created_at;index"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (credentialRecord) TableName() string { return "api_credentials" }

// Resolve maps a bearer token to its caller when the credential is live.
func (s *CredentialStore) Resolve(ctx context.Context, token string) (*domain.Caller, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, accessports.ErrUnknownCredential
	}
	var rec credentialRecord
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", accessports.HashToken(token)).
		Where("expires_at IS NULL OR expires_at > ?", s.now()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, accessports.ErrUnknownCredential
		}
		return nil, err
	}
	caller := rec.toCaller()
	return &caller, nil
}

// Save upserts a credential keyed by its token hash.
func (s *CredentialStore) Save(ctx context.Context, credential domain.Credential) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if err := credential.Validate(); err != nil {
		return err
	}
	scopes := make(pq.StringArray, 0, len(credential.Caller.Scopes))
	for _, scope := range credential.Caller.Scopes {
		scopes = append(scopes, string(scope))
	}
	rec := credentialRecord{
		TokenHash: accessports.HashToken(credential.Token),
		ActorID:   strings.TrimSpace(credential.Caller.ID),
		ActorType: string(credential.Caller.ActorType),
		Scopes:    scopes,
		ExpiresAt: credential.ExpiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"actor_id", "actor_type", "scopes", "expires_at", "updated_at"}),
		}).
		Create(&rec).Error
}

// Revoke deletes the credential for a token.
func (s *CredentialStore) Revoke(ctx context.Context, token string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&credentialRecord{}, "token_hash = ?", accessports.HashToken(token)).Error
}

// PurgeExpired removes all expired credentials. Use for housekeeping or cron.
func (s *CredentialStore) PurgeExpired(ctx context.Context) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&credentialRecord{})
	return result.RowsAffected, result.Error
}

func (s *CredentialStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres credential store not configured")
	}
	return nil
}

func (r credentialRecord) toCaller() domain.Caller {
	scopes := make([]domain.Scope, 0, len(r.Scopes))
	for _, scope := range r.Scopes {
		scopes = append(scopes, domain.Scope(scope))
	}
	return domain.Caller{
		ID:        r.ActorID,
		ActorType: domain.ParseActorType(r.ActorType),
		Scopes:    scopes,
	}
}
