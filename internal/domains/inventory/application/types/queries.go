package types

import (
	"time"

	"github.com/shopspring/decimal"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
)

const (
	DefaultHealthLimit = 50
	MaxHealthLimit     = 500
	DefaultHealthOrder = "ats:desc"
)

// HealthInput filters and pages the availability report.
type HealthInput struct {
	Caller     accessdomain.Caller
	LocationID string
	Status     string
	Search     string
	Order      string
	Limit      int
	Offset     int
}

// HealthItem is one ledger row presented in physical units.
type HealthItem struct {
	VariantID         string
	SKU               string
	Title             string
	ProductTitle      string
	InventoryItemID   string
	LocationID        string
	LocationName      string
	Stocked           decimal.Decimal
	Reserved          decimal.Decimal
	Incoming          decimal.Decimal
	ATS               decimal.Decimal
	ATSUnits          int64
	LowStockThreshold *decimal.Decimal
	MinIncrement      decimal.Decimal
	Status            domain.StockStatus
}

// HealthReport is the assembled availability report.
type HealthReport struct {
	Count int
	Items []HealthItem
	// CatalogDegraded is set when catalog lookup failed and catalog fields were left empty.
	CatalogDegraded bool
	CatalogErr      error
}

// AdjustmentsInput selects audit records for one ledger row.
type AdjustmentsInput struct {
	Caller          accessdomain.Caller
	InventoryItemID string
	LocationID      string
	Limit           int
}

// AdjustmentView is an audit record as returned to readers.
type AdjustmentView struct {
	ID              string
	InventoryItemID string
	LocationID      string
	Delta           *decimal.Decimal
	ToQuantity      *decimal.Decimal
	Reason          string
	Note            string
	Reference       string
	PrevQuantity    decimal.Decimal
	NewQuantity     decimal.Decimal
	ActorID         string
	CreatedAt       time.Time
}
