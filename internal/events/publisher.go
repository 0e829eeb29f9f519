// Package events publishes shipment integration events to Kafka
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	skafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// TypeStatusChanged is the event type of StatusChangedMessage
const TypeStatusChanged = "shipment.status_changed"

// Writer is the subset of kafka.Writer the producer needs
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is used by services to publish events
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

// StatusChangedMessage is published after a status change commits
type StatusChangedMessage struct {
	Type            string                `json:"type"`
	ShipmentID      uuid.UUID             `json:"shipment_id"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	EventID         uuid.UUID             `json:"event_id"`
	From            domain.ShipmentStatus `json:"from"`
	To              domain.ShipmentStatus `json:"to"`
	TrackingNumber  string                `json:"tracking_number"`
	Location        string                `json:"location,omitempty"`
	ActorID         *uuid.UUID            `json:"actor_id,omitempty"`
	OccurredAt      time.Time             `json:"occurred_at"`
}

// NewStatusChangedMessage builds the message for one recorded event
func NewStatusChangedMessage(from domain.ShipmentStatus, rec *domain.ShipmentRecord, ev *domain.ShipmentEvent) StatusChangedMessage {
	return StatusChangedMessage{
		Type:            TypeStatusChanged,
		ShipmentID:      rec.ID,
		PurchaseOrderID: rec.PurchaseOrderID,
		EventID:         ev.ID,
		From:            from,
		To:              ev.Status,
		TrackingNumber:  rec.TrackingNumber,
		Location:        ev.Location,
		ActorID:         ev.CreatedBy,
		OccurredAt:      ev.Timestamp,
	}
}

// KafkaProducer writes JSON messages through a kafka writer
type KafkaProducer struct {
	writer Writer
	logger *zap.Logger
}

// NewKafkaProducer creates a producer writing to topic on the given brokers
func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.Hash{},
		RequiredAcks: skafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaProducer{writer: w, logger: logger}
}

// NewKafkaProducerWithWriter allows injecting a test writer
func NewKafkaProducerWithWriter(w Writer, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, logger: logger}
}

// Publish marshals value to JSON and writes it under key. Messages for the
// same shipment share a key, so they land on one partition in order.
func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		p.logger.Error("Failed to marshal kafka value", zap.Error(err))
		return err
	}
	msg := skafka.Message{Key: []byte(key), Value: b}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("Kafka write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the underlying writer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every message. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// ParseBrokers splits a comma separated broker list, dropping blanks
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
