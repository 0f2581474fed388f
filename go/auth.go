package inventoryserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	accessports "github.com/Apurer/fabric-inventory/internal/domains/access/ports"
	apierrors "github.com/Apurer/fabric-inventory/internal/shared/errors"
)

const (
	callerContextKey = "inventory.caller"

	HeaderActorID     = "X-Actor-Id"
	HeaderActorType   = "X-Actor-Type"
	HeaderActorScopes = "X-Actor-Scopes"
)

// AuthConfig controls how the caller identity is established.
type AuthConfig struct {
	// Credentials resolves bearer tokens. Nil disables bearer authentication.
	Credentials accessports.CredentialStore
	// TrustCallerHeaders accepts X-Actor-* headers set by an authenticating gateway.
	TrustCallerHeaders bool
}

// Authenticate resolves the caller and stores it on the gin context. Requests without
// credentials continue as anonymous; the inventory service decides whether that is enough.
func Authenticate(cfg AuthConfig, responder *apierrors.ChainedResponder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if cfg.Credentials == nil {
				respondError(c, responder, http.StatusUnauthorized, accessports.ErrUnknownCredential)
				c.Abort()
				return
			}
			caller, err := cfg.Credentials.Resolve(c.Request.Context(), token)
			if err != nil {
				status := http.StatusInternalServerError
				if errors.Is(err, accessports.ErrUnknownCredential) {
					status = http.StatusUnauthorized
				}
				respondError(c, responder, status, err)
				c.Abort()
				return
			}
			c.Set(callerContextKey, *caller)
			c.Next()
			return
		}
		if cfg.TrustCallerHeaders {
			if id := strings.TrimSpace(c.GetHeader(HeaderActorID)); id != "" {
				c.Set(callerContextKey, accessdomain.Caller{
					ID:        id,
					ActorType: accessdomain.ParseActorType(c.GetHeader(HeaderActorType)),
					Scopes:    accessdomain.ParseScopes(c.GetHeader(HeaderActorScopes)),
				})
			}
		}
		c.Next()
	}
}

// CallerFrom returns the authenticated caller, or an anonymous caller when none was set.
func CallerFrom(c *gin.Context) accessdomain.Caller {
	if v, ok := c.Get(callerContextKey); ok {
		if caller, ok := v.(accessdomain.Caller); ok {
			return caller
		}
	}
	return accessdomain.Anonymous()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
