package ports

import (
	"context"

	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
)

// Service defines the inventory use cases exposed to adapters (inbound/driving port).
type Service interface {
	Adjust(ctx context.Context, input invtypes.AdjustInput) (*invtypes.AdjustResult, error)
	ListHealth(ctx context.Context, input invtypes.HealthInput) (*invtypes.HealthReport, error)
	ListAdjustments(ctx context.Context, input invtypes.AdjustmentsInput) ([]invtypes.AdjustmentView, error)
}
