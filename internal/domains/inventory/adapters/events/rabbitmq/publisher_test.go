package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key, c.msg = exchange, key, msg
	return c.err
}

func (c *recordingChannel) Close() error { return nil }

func TestPublisher_AppendPublishesLevelAdjusted(t *testing.T) {
	ch := &recordingChannel{}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pub := newPublisherWithChannel(ch, "inventory-api", func() time.Time { return now })

	to := decimal.RequireFromString("13")
	err := pub.Append(context.Background(), domain.AdjustmentRecord{
		ID:              "adj_9",
		InventoryItemID: "iitem_1",
		LocationID:      "sloc_1",
		ToQuantity:      &to,
		Reason:          "cycle count",
		PrevQuantity:    decimal.RequireFromString("3.3"),
		NewQuantity:     to,
		CreatedAt:       now,
	})
	require.NoError(t, err)

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, RoutingKeyLevelAdjusted, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "adj_9", ch.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, RoutingKeyLevelAdjusted, body["event_type"])
	payload := body["payload"].(map[string]any)
	assert.Equal(t, "3.3", payload["prev_quantity"])
	assert.Equal(t, "13", payload["to_quantity"])
	assert.NotContains(t, payload, "delta")
}

func TestPublisher_AppendWrapsBrokerError(t *testing.T) {
	pub := newPublisherWithChannel(&recordingChannel{err: amqp.ErrClosed}, "inventory-api", time.Now)
	err := pub.Append(context.Background(), domain.AdjustmentRecord{ID: "adj_1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}
