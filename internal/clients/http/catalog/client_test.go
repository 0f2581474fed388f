package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantByInventoryItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/admin/inventory-items/iitem_1/variant":
			_ = json.NewEncoder(w).Encode(map[string]any{"variant": map[string]any{
				"id": "variant_1", "inventory_item_id": "iitem_1", "sku": "LIN-NAT",
				"metadata": map[string]any{"min_increment": 0.25},
			}})
		case "/admin/inventory-items/iitem_err/variant":
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"type":"unexpected_state","message":"upstream unavailable"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithAPIToken("secret"))
	require.NoError(t, err)

	variant, err := client.VariantByInventoryItem(context.Background(), "iitem_1")
	require.NoError(t, err)
	require.NotNil(t, variant)
	assert.Equal(t, "LIN-NAT", variant.SKU)
	assert.Equal(t, 0.25, variant.Metadata["min_increment"])

	missing, err := client.VariantByInventoryItem(context.Background(), "iitem_2")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = client.VariantByInventoryItem(context.Background(), "iitem_err")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestVariantsByInventoryItems_BatchesRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/variants", r.URL.Path)
		calls.Add(1)
		ids := r.URL.Query()["inventory_item_id"]
		variants := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			if strings.HasSuffix(id, "_unlinked") {
				continue
			}
			variants = append(variants, map[string]any{"id": "variant_" + id, "inventory_item_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"variants": variants})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, WithBatching(2, 2))
	require.NoError(t, err)

	result, err := client.VariantsByInventoryItems(context.Background(), []string{"a", "b", "c", "d_unlinked", "e"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, result, 4)
	assert.Equal(t, "variant_c", result["c"].ID)
	assert.NotContains(t, result, "d_unlinked")
}

func TestVariantsByInventoryItems_PropagatesFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.VariantsByInventoryItems(context.Background(), []string{"a"})
	require.Error(t, err)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
}
