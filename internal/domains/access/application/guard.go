package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/fabric-inventory/internal/domains/access/domain"
)

// ErrForbidden signals the caller lacks the capability for the requested operation.
var ErrForbidden = errors.New("forbidden")

// Guard gates operations on the caller's actor type and scopes. It performs no authentication.
type Guard struct{}

// NewGuard returns the scope guard.
func NewGuard() Guard {
	return Guard{}
}

// Authorize admits admin actors and any caller holding every required scope.
func (Guard) Authorize(caller domain.Caller, required ...domain.Scope) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.ActorType == domain.ActorAnonymous || strings.TrimSpace(caller.ID) == "" {
		return fmt.Errorf("%w: caller is not authenticated", ErrForbidden)
	}
	var missing []string
	for _, scope := range required {
		if !caller.HasScope(scope) {
			missing = append(missing, string(scope))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing scope %s", ErrForbidden, strings.Join(missing, ", "))
	}
	return nil
}
