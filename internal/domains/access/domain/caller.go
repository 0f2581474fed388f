package domain

import (
	"errors"
	"strings"
	"time"
)

// Scope is a capability granted to a caller by the authentication collaborator.
type Scope string

const (
	ScopeInventoryRead  Scope = "inventory:read"
	ScopeInventoryWrite Scope = "inventory:write"
)

// ActorType distinguishes the kind of principal behind a request.
type ActorType string

const (
	ActorAdmin     ActorType = "admin"
	ActorService   ActorType = "service"
	ActorCustomer  ActorType = "customer"
	ActorAnonymous ActorType = "anonymous"
)

// Caller is the identity handed to the core by the authentication layer.
type Caller struct {
	ID        string
	ActorType ActorType
	Scopes    []Scope
}

// Anonymous returns a caller with no identity and no scopes.
func Anonymous() Caller {
	return Caller{ActorType: ActorAnonymous}
}

// HasScope reports whether the caller was granted the scope.
func (c Caller) HasScope(scope Scope) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IsAdmin reports administrative actors, which hold every inventory capability.
func (c Caller) IsAdmin() bool {
	return c.ActorType == ActorAdmin && strings.TrimSpace(c.ID) != ""
}

// ParseActorType maps free-form input onto a known actor type, defaulting to anonymous.
func ParseActorType(raw string) ActorType {
	switch ActorType(strings.ToLower(strings.TrimSpace(raw))) {
	case ActorAdmin:
		return ActorAdmin
	case ActorService:
		return ActorService
	case ActorCustomer:
		return ActorCustomer
	default:
		return ActorAnonymous
	}
}

// ParseScopes splits a comma or space separated scope list.
func ParseScopes(raw string) []Scope {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	scopes := make([]Scope, 0, len(fields))
	for _, f := range fields {
		scopes = append(scopes, Scope(strings.TrimSpace(f)))
	}
	return scopes
}

var (
	ErrEmptyToken   = errors.New("credential token is required")
	ErrEmptyActorID = errors.New("credential actor id is required")
)

// Credential binds an opaque bearer token to a caller identity.
type Credential struct {
	Token     string
	Caller    Caller
	ExpiresAt *time.Time
}

// Validate checks that the credential can be stored.
func (c Credential) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return ErrEmptyToken
	}
	if strings.TrimSpace(c.Caller.ID) == "" {
		return ErrEmptyActorID
	}
	return nil
}

// Expired reports whether the credential is past its expiry at the given instant.
func (c Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
