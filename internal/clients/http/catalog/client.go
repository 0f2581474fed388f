package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oapi-codegen/runtime"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 50
	defaultConcurrency = 4
)

// Variant is the commerce catalog's view of a product variant linked to an inventory item.
type Variant struct {
	ID              string         `json:"id"`
	InventoryItemID string         `json:"inventory_item_id"`
	SKU             string         `json:"sku"`
	Title           string         `json:"title"`
	ProductTitle    string         `json:"product_title"`
	Metadata        map[string]any `json:"metadata"`
}

type variantEnvelope struct {
	Variant *Variant `json:"variant"`
}

type variantListEnvelope struct {
	Variants []Variant `json:"variants"`
}

// Error is the error body returned by the commerce admin API.
type Error struct {
	Type    *string `json:"type,omitempty"`
	Message *string `json:"message,omitempty"`
}

// Client reads variant linkage from the commerce admin API.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	token       string
	batchSize   int
	concurrency int
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithAPIToken sends the token as a bearer credential.
func WithAPIToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithBatching bounds the ids per request and the number of requests in flight.
func WithBatching(batchSize, concurrency int) Option {
	return func(c *Client) {
		if batchSize > 0 {
			c.batchSize = batchSize
		}
		if concurrency > 0 {
			c.concurrency = concurrency
		}
	}
}

// NewClient instantiates the catalog client with sane defaults.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	c := &Client{
		baseURL:     parsed,
		http:        &http.Client{Timeout: 5 * time.Second},
		batchSize:   defaultBatchSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// VariantByInventoryItem returns the variant linked to the item, or nil when none is linked.
func (c *Client) VariantByInventoryItem(ctx context.Context, inventoryItemID string) (*Variant, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("catalog client not configured")
	}
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, inventoryItemID)
	if err != nil {
		return nil, err
	}
	target, err := c.baseURL.Parse(fmt.Sprintf("admin/inventory-items/%s/variant", pathParam))
	if err != nil {
		return nil, err
	}
	var body variantEnvelope
	status, err := c.get(ctx, target, &body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return body.Variant, nil
}

// VariantsByInventoryItems resolves many items, batching ids and fanning requests out with a
// bounded number in flight. Items without a linked variant are absent from the result.
func (c *Client) VariantsByInventoryItems(ctx context.Context, inventoryItemIDs []string) (map[string]Variant, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("catalog client not configured")
	}
	result := make(map[string]Variant, len(inventoryItemIDs))
	if len(inventoryItemIDs) == 0 {
		return result, nil
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for start := 0; start < len(inventoryItemIDs); start += c.batchSize {
		end := start + c.batchSize
		if end > len(inventoryItemIDs) {
			end = len(inventoryItemIDs)
		}
		batch := inventoryItemIDs[start:end]
		g.Go(func() error {
			variants, err := c.listVariants(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, v := range variants {
				result[v.InventoryItemID] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) listVariants(ctx context.Context, ids []string) ([]Variant, error) {
	target, err := c.baseURL.Parse("admin/variants")
	if err != nil {
		return nil, err
	}
	queryValues := target.Query()
	queryFrag, err := runtime.StyleParamWithLocation("form", true, "inventory_item_id", runtime.ParamLocationQuery, ids)
	if err != nil {
		return nil, err
	}
	parsed, err := url.ParseQuery(queryFrag)
	if err != nil {
		return nil, err
	}
	for k, v := range parsed {
		for _, v2 := range v {
			queryValues.Add(k, v2)
		}
	}
	limitFrag, err := runtime.StyleParamWithLocation("form", true, "limit", runtime.ParamLocationQuery, len(ids))
	if err != nil {
		return nil, err
	}
	parsed, err = url.ParseQuery(limitFrag)
	if err != nil {
		return nil, err
	}
	for k, v := range parsed {
		for _, v2 := range v {
			queryValues.Add(k, v2)
		}
	}
	target.RawQuery = queryValues.Encode()

	var body variantListEnvelope
	if _, err := c.get(ctx, target, &body); err != nil {
		return nil, err
	}
	return body.Variants, nil
}

// get performs the request and decodes 2xx bodies into out. 404 is returned as a status, other
// non-2xx statuses as errors.
func (c *Client) get(ctx context.Context, target *url.URL, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call catalog API: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read catalog response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp.StatusCode, nil
	case resp.StatusCode >= http.StatusBadRequest:
		var apiErr Error
		_ = json.Unmarshal(raw, &apiErr)
		return resp.StatusCode, fmt.Errorf("catalog API error: %s", errorMessage(&apiErr, resp.Status))
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return resp.StatusCode, fmt.Errorf("catalog API unexpected status: %s", resp.Status)
	}
	if len(raw) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode catalog response: %w", err)
	}
	return resp.StatusCode, nil
}

func errorMessage(body *Error, fallback string) string {
	if body == nil {
		return fallback
	}
	if body.Message != nil {
		if msg := strings.TrimSpace(*body.Message); msg != "" {
			return msg
		}
	}
	if body.Type != nil {
		if msg := strings.TrimSpace(*body.Type); msg != "" {
			return msg
		}
	}
	return fallback
}
