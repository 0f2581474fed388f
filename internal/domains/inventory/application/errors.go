package application

import (
	"errors"
	"fmt"

	accessapp "github.com/Apurer/fabric-inventory/internal/domains/access/application"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

var (
	// ErrInvalidRequest signals malformed or contradictory input.
	ErrInvalidRequest = errors.New("invalid inventory request")
	// ErrInvalidResult signals the adjustment would leave the ledger in an invalid state.
	ErrInvalidResult = errors.New("invalid adjustment result")
	// ErrInvalidPolicy signals unusable catalog policy metadata rather than a ledger problem.
	ErrInvalidPolicy = errors.New("invalid inventory policy")
	// ErrForbidden is returned when the caller lacks the required scope.
	ErrForbidden = accessapp.ErrForbidden
	// ErrNotFound is returned when no ledger row exists for the item/location pair.
	ErrNotFound = ports.ErrLevelNotFound
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidResult),
		errors.Is(err, ErrInvalidPolicy),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, domain.ErrAmbiguousAdjustment) ||
		errors.Is(err, domain.ErrMissingReason) ||
		errors.Is(err, domain.ErrQuantityOutOfRange) ||
		errors.Is(err, domain.ErrInvalidLevelKey):
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case errors.Is(err, domain.ErrNegativeStock):
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	case errors.Is(err, domain.ErrInvalidPolicy) || errors.Is(err, domain.ErrInvalidRounding):
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}
	return err
}
