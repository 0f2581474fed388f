package inventoryserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessdomain "github.com/Apurer/fabric-inventory/internal/domains/access/domain"
	accessmemory "github.com/Apurer/fabric-inventory/internal/domains/access/adapters/memory"
	invmemory "github.com/Apurer/fabric-inventory/internal/domains/inventory/adapters/memory"
	invapp "github.com/Apurer/fabric-inventory/internal/domains/inventory/application"
	invtypes "github.com/Apurer/fabric-inventory/internal/domains/inventory/application/types"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	invports "github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

const (
	adminToken  = "tok_admin"
	readerToken = "tok_reader"
)

type server struct {
	router *gin.Engine
	ledger *invmemory.Ledger
}

func newServer(t *testing.T, svc invports.Service, opts ...InventoryAPIOption) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	creds := accessmemory.NewCredentialStore()
	require.NoError(t, creds.Save(context.Background(), accessdomain.Credential{
		Token:  adminToken,
		Caller: accessdomain.Caller{ID: "user_admin", ActorType: accessdomain.ActorAdmin},
	}))
	require.NoError(t, creds.Save(context.Background(), accessdomain.Credential{
		Token: readerToken,
		Caller: accessdomain.Caller{
			ID:        "svc_report",
			ActorType: accessdomain.ActorService,
			Scopes:    []accessdomain.Scope{accessdomain.ScopeInventoryRead},
		},
	}))
	responder := NewResponder(false)
	opts = append([]InventoryAPIOption{WithResponder(responder)}, opts...)
	return NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		InventoryAPI: NewInventoryAPI(svc, opts...),
	}, Authenticate(AuthConfig{Credentials: creds, TrustCallerHeaders: true}, responder))
}

func newFabricServer(t *testing.T) server {
	t.Helper()
	ledger := invmemory.NewLedger()
	ledger.PutItem("iitem_linen", map[string]any{
		domain.MetaMinIncrement:      0.25,
		domain.MetaLowStockThreshold: 1,
	})
	ledger.PutLocation("sloc_main", "Main warehouse")
	require.NoError(t, ledger.PutLevel(domain.InventoryLevel{
		InventoryItemID: "iitem_linen", LocationID: "sloc_main", Stocked: 8, Reserved: 4,
	}))
	catalog := invmemory.NewCatalog()
	catalog.Link(invports.CatalogEntry{
		InventoryItemID: "iitem_linen", VariantID: "variant_1", SKU: "LIN-NAT", Title: "Natural", ProductTitle: "Linen",
	})
	audit := invmemory.NewAuditLog()
	svc := invapp.NewService(ledger, catalog, audit, invapp.WithAuditReader(audit))
	return server{router: newServer(t, svc), ledger: ledger}
}

func do(router *gin.Engine, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAdjust_DeltaDeposit(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_linen",
		"location_id":       "sloc_main",
		"delta":             0.5,
		"reason":            "restock",
		"reference":         "po_42",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"inventory_item_id":"iitem_linen","location_id":"sloc_main","prev_quantity":2,"new_quantity":2.5,"reason":"restock","reference":"po_42"}`, rec.Body.String())
}

func TestAdjust_NegativeResultIsBadRequest(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_linen",
		"location_id":       "sloc_main",
		"delta":             -3,
		"reason":            "damage",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "resulting quantity cannot be negative")
}

func TestAdjust_RejectsBothDeltaAndTarget(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_linen",
		"location_id":       "sloc_main",
		"delta":             1,
		"to_quantity":       3,
		"reason":            "count",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjust_MalformedBody(t *testing.T) {
	s := newFabricServer(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/inventory/adjust", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
}

func TestAdjust_Authorization(t *testing.T) {
	s := newFabricServer(t)
	payload := map[string]any{"inventory_item_id": "iitem_linen", "location_id": "sloc_main", "delta": 1, "reason": "restock"}

	t.Run("anonymous is forbidden", func(t *testing.T) {
		rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", "", payload)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("read scope cannot write", func(t *testing.T) {
		rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", readerToken, payload)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("unknown token is unauthorized", func(t *testing.T) {
		rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", "tok_nope", payload)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("trusted headers carry scopes", func(t *testing.T) {
		rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", "", payload,
			HeaderActorID, "svc_sync", HeaderActorType, "service", HeaderActorScopes, "inventory:write")
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func TestAdjust_AuthorizesBeforeParsingBody(t *testing.T) {
	s := newFabricServer(t)

	for name, token := range map[string]string{"anonymous": "", "reader": readerToken} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/inventory/adjust", bytes.NewBufferString("{"))
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()

			s.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestAdjust_QuantityPastLedgerRangeIsBadRequest(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_linen",
		"location_id":       "sloc_main",
		"delta":             json.Number("9223372036854775807"),
		"reason":            "restock",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode(t, rec)["message"], "quantity is out of range")

	state, err := s.ledger.Get(context.Background(), invports.LevelKey{InventoryItemID: "iitem_linen", LocationID: "sloc_main"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), state.Level.Stocked)
}

func TestAdjust_UnknownLevelIsNotFound(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_missing",
		"location_id":       "sloc_main",
		"to_quantity":       1,
		"reason":            "count",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth_ReportsLowStock(t *testing.T) {
	s := newFabricServer(t)

	rec := do(s.router, http.MethodGet, "/admin/inventory/health?status=low_stock", readerToken, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"count":1,"items":[{
		"variant_id":"variant_1","sku":"LIN-NAT","title":"Natural","product_title":"Linen",
		"inventory_item_id":"iitem_linen","location_id":"sloc_main","location_name":"Main warehouse",
		"stocked":2,"reserved":1,"incoming":0,"ats":1,"low_stock_threshold":1,"status":"low_stock"}]}`, rec.Body.String())
}

func TestHealth_BadQuery(t *testing.T) {
	s := newFabricServer(t)

	assert.Equal(t, http.StatusBadRequest, do(s.router, http.MethodGet, "/admin/inventory/health?limit=abc", readerToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s.router, http.MethodGet, "/admin/inventory/health?status=sold_out", readerToken, nil).Code)
}

func TestListAdjustments_ReturnsTrail(t *testing.T) {
	s := newFabricServer(t)
	rec := do(s.router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{
		"inventory_item_id": "iitem_linen", "location_id": "sloc_main", "to_quantity": 3, "reason": "cycle count",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s.router, http.MethodGet, "/admin/inventory/adjustments?inventory_item_id=iitem_linen", readerToken, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	item := body["items"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 3, item["new_quantity"])
	assert.EqualValues(t, 3, item["to_quantity"])
	assert.Equal(t, "user_admin", item["actor_id"])
}

type brokenService struct{ err error }

func (b brokenService) Adjust(context.Context, invtypes.AdjustInput) (*invtypes.AdjustResult, error) {
	return nil, b.err
}

func (b brokenService) ListHealth(context.Context, invtypes.HealthInput) (*invtypes.HealthReport, error) {
	return nil, b.err
}

func (b brokenService) ListAdjustments(context.Context, invtypes.AdjustmentsInput) ([]invtypes.AdjustmentView, error) {
	return nil, b.err
}

func TestInternalErrorsHideDetailWhenConfigured(t *testing.T) {
	svc := brokenService{err: errors.New("pq: connection refused")}

	visible := newServer(t, svc)
	rec := do(visible, http.MethodGet, "/admin/inventory/health", adminToken, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["message"], "connection refused")

	hidden := newServer(t, svc, WithResponder(NewResponder(true)))
	rec = do(hidden, http.MethodGet, "/admin/inventory/health", adminToken, nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An unexpected error occurred", decode(t, rec)["message"])
}

func TestInvalidPolicyIsUnprocessable(t *testing.T) {
	router := newServer(t, brokenService{err: invapp.ErrInvalidPolicy})

	rec := do(router, http.MethodPost, "/admin/inventory/adjust", adminToken, map[string]any{"reason": "x"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthzBypassesAuthentication(t *testing.T) {
	router := newServer(t, brokenService{})

	rec := do(router, http.MethodGet, "/healthz", "tok_nope", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
