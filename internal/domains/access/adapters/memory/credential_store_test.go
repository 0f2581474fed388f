package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/access/ports"
)

func TestCredentialStore_ResolveAndExpire(t *testing.T) {
	store := NewCredentialStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.WithClock(func() time.Time { return now })
	expiry := now.Add(time.Hour)

	err := store.Save(context.Background(), domain.Credential{
		Token:     "tok-admin",
		Caller:    domain.Caller{ID: "user_01", ActorType: domain.ActorAdmin},
		ExpiresAt: &expiry,
	})
	require.NoError(t, err)

	caller, err := store.Resolve(context.Background(), "tok-admin")
	require.NoError(t, err)
	require.Equal(t, "user_01", caller.ID)

	now = now.Add(2 * time.Hour)
	_, err = store.Resolve(context.Background(), "tok-admin")
	require.ErrorIs(t, err, ports.ErrUnknownCredential)
}

func TestCredentialStore_Revoke(t *testing.T) {
	store := NewCredentialStore()
	require.NoError(t, store.Save(context.Background(), domain.Credential{
		Token:  "tok-svc",
		Caller: domain.Caller{ID: "svc", ActorType: domain.ActorService, Scopes: []domain.Scope{domain.ScopeInventoryRead}},
	}))
	require.NoError(t, store.Revoke(context.Background(), "tok-svc"))
	_, err := store.Resolve(context.Background(), "tok-svc")
	require.ErrorIs(t, err, ports.ErrUnknownCredential)
}

func TestCredentialStore_RejectsInvalid(t *testing.T) {
	store := NewCredentialStore()
	require.ErrorIs(t, store.Save(context.Background(), domain.Credential{Caller: domain.Caller{ID: "x"}}), domain.ErrEmptyToken)
	require.ErrorIs(t, store.Save(context.Background(), domain.Credential{Token: "t"}), domain.ErrEmptyActorID)
}
