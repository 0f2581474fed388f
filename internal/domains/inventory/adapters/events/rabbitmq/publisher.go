package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/Apurer/fabric-inventory/internal/domains/inventory/domain"
	"github.com/Apurer/fabric-inventory/internal/domains/inventory/ports"
)

const (
	ExchangeName = "inventory.events"
	ExchangeType = "topic"

	RoutingKeyLevelAdjusted = "inventory.level.adjusted"
	eventVersion            = "1"
)

var _ ports.AuditLog = (*Publisher)(nil)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher mirrors committed adjustments onto a topic exchange so downstream services
// (storefront caches, search) can refresh availability.
type Publisher struct {
	conn        *amqp.Connection
	channel     channel
	serviceName string
	now         func() time.Time
}

// NewPublisher dials RabbitMQ and declares the durable topic exchange.
func NewPublisher(url, serviceName string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeName, ExchangeType, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: ch, serviceName: serviceName, now: time.Now}, nil
}

func newPublisherWithChannel(ch channel, serviceName string, now func() time.Time) *Publisher {
	return &Publisher{channel: ch, serviceName: serviceName, now: now}
}

// LevelAdjustedEvent is the JSON body published for each committed adjustment.
type LevelAdjustedEvent struct {
	EventID      string               `json:"event_id"`
	EventType    string               `json:"event_type"`
	EventVersion string               `json:"event_version"`
	Timestamp    string               `json:"timestamp"`
	Payload      LevelAdjustedPayload `json:"payload"`
}

type LevelAdjustedPayload struct {
	AdjustmentID    string           `json:"adjustment_id"`
	InventoryItemID string           `json:"inventory_item_id"`
	LocationID      string           `json:"location_id"`
	PrevQuantity    decimal.Decimal  `json:"prev_quantity"`
	NewQuantity     decimal.Decimal  `json:"new_quantity"`
	Delta           *decimal.Decimal `json:"delta,omitempty"`
	ToQuantity      *decimal.Decimal `json:"to_quantity,omitempty"`
	Reason          string           `json:"reason"`
	Reference       string           `json:"reference,omitempty"`
	ActorID         string           `json:"actor_id,omitempty"`
	AdjustedAt      time.Time        `json:"adjusted_at"`
}

// Append publishes the record as an inventory.level.adjusted event.
func (p *Publisher) Append(ctx context.Context, record domain.AdjustmentRecord) error {
	if p == nil || p.channel == nil {
		return errors.New("publisher channel is nil")
	}
	event := LevelAdjustedEvent{
		EventID:      record.ID,
		EventType:    RoutingKeyLevelAdjusted,
		EventVersion: eventVersion,
		Timestamp:    p.now().UTC().Format(time.RFC3339Nano),
		Payload: LevelAdjustedPayload{
			AdjustmentID:    record.ID,
			InventoryItemID: record.InventoryItemID,
			LocationID:      record.LocationID,
			PrevQuantity:    record.PrevQuantity,
			NewQuantity:     record.NewQuantity,
			Delta:           record.Delta,
			ToQuantity:      record.ToQuantity,
			Reason:          record.Reason,
			Reference:       record.Reference,
			ActorID:         record.ActorID,
			AdjustedAt:      record.CreatedAt,
		},
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.channel.PublishWithContext(ctx, ExchangeName, RoutingKeyLevelAdjusted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    record.ID,
		AppId:        p.serviceName,
		Timestamp:    p.now().UTC(),
	}); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyLevelAdjusted, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
