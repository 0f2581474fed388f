package mapper

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
)

// AdjustRequest is the inbound payload of an adjustment. Delta and ToQuantity keep field presence
// so the service can reject payloads carrying both or neither.
type AdjustRequest struct {
	InventoryItemID string           `json:"inventory_item_id"`
	LocationID      string           `json:"location_id"`
	Delta           *decimal.Decimal `json:"delta,omitempty"`
	ToQuantity      *decimal.Decimal `json:"to_quantity,omitempty"`
	Reason          string           `json:"reason"`
	Note            string           `json:"note,omitempty"`
	Reference       string           `json:"reference,omitempty"`
}

// AdjustResponse is returned after a committed adjustment.
type AdjustResponse struct {
	Success         bool        `json:"success"`
	InventoryItemID string      `json:"inventory_item_id"`
	LocationID      string      `json:"location_id"`
	PrevQuantity    json.Number `json:"prev_quantity"`
	NewQuantity     json.Number `json:"new_quantity"`
	Reason          string      `json:"reason"`
	Note            string      `json:"note,omitempty"`
	Reference       string      `json:"reference,omitempty"`
}

// HealthItem is one row of the availability report.
type HealthItem struct {
	VariantID         string       `json:"variant_id,omitempty"`
	SKU               string       `json:"sku,omitempty"`
	Title             string       `json:"title,omitempty"`
	ProductTitle      string       `json:"product_title,omitempty"`
	InventoryItemID   string       `json:"inventory_item_id"`
	LocationID        string       `json:"location_id"`
	LocationName      string       `json:"location_name,omitempty"`
	Stocked           json.Number  `json:"stocked"`
	Reserved          json.Number  `json:"reserved"`
	Incoming          json.Number  `json:"incoming"`
	ATS               json.Number  `json:"ats"`
	LowStockThreshold *json.Number `json:"low_stock_threshold,omitempty"`
	Status            string       `json:"status"`
}

// HealthResponse wraps the report. Count is the number of items returned.
type HealthResponse struct {
	Count int          `json:"count"`
	Items []HealthItem `json:"items"`
}

// Adjustment is an audit trail entry.
type Adjustment struct {
	ID              string       `json:"id"`
	InventoryItemID string       `json:"inventory_item_id"`
	LocationID      string       `json:"location_id"`
	Delta           *json.Number `json:"delta,omitempty"`
	ToQuantity      *json.Number `json:"to_quantity,omitempty"`
	Reason          string       `json:"reason"`
	Note            string       `json:"note,omitempty"`
	Reference       string       `json:"reference,omitempty"`
	PrevQuantity    json.Number  `json:"prev_quantity"`
	NewQuantity     json.Number  `json:"new_quantity"`
	ActorID         string       `json:"actor_id,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// AdjustmentList wraps audit trail entries.
type AdjustmentList struct {
	Count int          `json:"count"`
	Items []Adjustment `json:"items"`
}

// ToAdjustInput binds the payload to the caller resolved by the authentication middleware.
func ToAdjustInput(req AdjustRequest, caller accessdomain.Caller) invtypes.AdjustInput {
	return invtypes.AdjustInput{
		Caller:          caller,
		InventoryItemID: req.InventoryItemID,
		LocationID:      req.LocationID,
		Reason:          req.Reason,
		Note:            req.Note,
		Reference:       req.Reference,
		Delta:           req.Delta,
		ToQuantity:      req.ToQuantity,
	}
}

// FromAdjustResult converts the service result into the response payload.
func FromAdjustResult(res *invtypes.AdjustResult) AdjustResponse {
	if res == nil {
		return AdjustResponse{}
	}
	return AdjustResponse{
		Success:         true,
		InventoryItemID: res.InventoryItemID,
		LocationID:      res.LocationID,
		PrevQuantity:    number(res.PrevQuantity),
		NewQuantity:     number(res.NewQuantity),
		Reason:          res.Reason,
		Note:            res.Note,
		Reference:       res.Reference,
	}
}

// FromHealthReport converts the availability report.
func FromHealthReport(report *invtypes.HealthReport) HealthResponse {
	if report == nil {
		return HealthResponse{Items: []HealthItem{}}
	}
	items := make([]HealthItem, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, HealthItem{
			VariantID:         it.VariantID,
			SKU:               it.SKU,
			Title:             it.Title,
			ProductTitle:      it.ProductTitle,
			InventoryItemID:   it.InventoryItemID,
			LocationID:        it.LocationID,
			LocationName:      it.LocationName,
			Stocked:           number(it.Stocked),
			Reserved:          number(it.Reserved),
			Incoming:          number(it.Incoming),
			ATS:               number(it.ATS),
			LowStockThreshold: optionalNumber(it.LowStockThreshold),
			Status:            string(it.Status),
		})
	}
	return HealthResponse{Count: len(items), Items: items}
}

// FromAdjustmentViews converts audit trail entries.
func FromAdjustmentViews(views []invtypes.AdjustmentView) AdjustmentList {
	items := make([]Adjustment, 0, len(views))
	for _, v := range views {
		items = append(items, Adjustment{
			ID:              v.ID,
			InventoryItemID: v.InventoryItemID,
			LocationID:      v.LocationID,
			Delta:           optionalNumber(v.Delta),
			ToQuantity:      optionalNumber(v.ToQuantity),
			Reason:          v.Reason,
			Note:            v.Note,
			Reference:       v.Reference,
			PrevQuantity:    number(v.PrevQuantity),
			NewQuantity:     number(v.NewQuantity),
			ActorID:         v.ActorID,
			CreatedAt:       v.CreatedAt.UTC(),
		})
	}
	return AdjustmentList{Count: len(items), Items: items}
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func optionalNumber(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := number(*d)
	return &n
}
