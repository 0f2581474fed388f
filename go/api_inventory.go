package inventoryserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	accessapp "github.com/Apurer/fabric-inventory/internal/domains/access/application"
	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	invmapper "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/http/mapper"
	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/fabric-inventory/internal/shared/errors"
)

// InventoryAPI wires HTTP transport with the inventory service.
type InventoryAPI struct {
	service      invports.Service
	guard        accessapp.Guard
	responder    *apierrors.ChainedResponder
	defaultLimit int
}

// InventoryAPIOption customises the handlers.
type InventoryAPIOption func(*InventoryAPI)

// WithResponder replaces the problem responder, e.g. to hide internal error detail.
func WithResponder(responder *apierrors.ChainedResponder) InventoryAPIOption {
	return func(api *InventoryAPI) {
		if responder != nil {
			api.responder = responder
		}
	}
}

// WithDefaultHealthLimit sets the page size used when the health query omits limit.
func WithDefaultHealthLimit(limit int) InventoryAPIOption {
	return func(api *InventoryAPI) {
		if limit > 0 {
			api.defaultLimit = limit
		}
	}
}

// NewInventoryAPI creates an InventoryAPI backed by the provided service.
func NewInventoryAPI(service invports.Service, opts ...InventoryAPIOption) InventoryAPI {
	api := InventoryAPI{
		service:      service,
		guard:        accessapp.NewGuard(),
		responder:    NewResponder(false),
		defaultLimit: invtypes.DefaultHealthLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&api)
		}
	}
	return api
}

// Post /admin/inventory/adjust
// Adjust stock of one inventory item at one location
func (api *InventoryAPI) Adjust(c *gin.Context) {
	caller := CallerFrom(c)
	// guard runs before the body is parsed
	if err := api.guard.Authorize(caller, accessdomain.ScopeInventoryWrite); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	var payload invmapper.AdjustRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, api.responder, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.Adjust(c.Request.Context(), invmapper.ToAdjustInput(payload, caller))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invmapper.FromAdjustResult(result))
}

// Get /admin/inventory/health
// Availability report per item and location
func (api *InventoryAPI) Health(c *gin.Context) {
	limit, err := queryInt(c, "limit", api.defaultLimit)
	if err != nil {
		respondError(c, api.responder, http.StatusBadRequest, err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, api.responder, http.StatusBadRequest, err)
		return
	}
	report, err := api.service.ListHealth(c.Request.Context(), invtypes.HealthInput{
		Caller:     CallerFrom(c),
		LocationID: strings.TrimSpace(c.Query("location_id")),
		Status:     strings.TrimSpace(c.Query("status")),
		Search:     c.Query("q"),
		Order:      strings.TrimSpace(c.Query("order")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invmapper.FromHealthReport(report))
}

// Get /admin/inventory/adjustments
// Audit trail of adjustments for one item and location
func (api *InventoryAPI) ListAdjustments(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, api.responder, http.StatusBadRequest, err)
		return
	}
	views, err := api.service.ListAdjustments(c.Request.Context(), invtypes.AdjustmentsInput{
		Caller:          CallerFrom(c),
		InventoryItemID: strings.TrimSpace(c.Query("inventory_item_id")),
		LocationID:      strings.TrimSpace(c.Query("location_id")),
		Limit:           limit,
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invmapper.FromAdjustmentViews(views))
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}
