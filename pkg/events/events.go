// Package events publishes domain events after records change.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	skafka "github.com/segmentio/kafka-go"
)

// Event types.
const (
	LeadCreated            = "lead.created"
	LeadUpdated            = "lead.updated"
	LeadDeleted            = "lead.deleted"
	LeadConverted          = "lead.converted"
	ClientCreated          = "client.created"
	ClientUpdated          = "client.updated"
	ClientDeleted          = "client.deleted"
	QuotationCreated       = "quotation.created"
	QuotationUpdated       = "quotation.updated"
	QuotationStatusChanged = "quotation.status_changed"
	QuotationDeleted       = "quotation.deleted"
	QuotationConverted     = "quotation.converted"
	InvoiceCreated         = "invoice.created"
	InvoiceUpdated         = "invoice.updated"
	InvoiceStatusChanged   = "invoice.payment_status_changed"
	InvoicePaymentRecorded = "invoice.payment_recorded"
	InvoiceDeleted         = "invoice.deleted"
	ServiceCreated         = "service.created"
	ServiceUpdated         = "service.updated"
	ServiceDeleted         = "service.deleted"
)

// Event is the envelope written to the bus.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"document_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data,omitempty"`
}

// New builds an event with a fresh ID.
func New(eventType, collection, documentID, actorID string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Collection: collection,
		DocumentID: documentID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

// Publisher is the interface used by services to publish events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Writer defines the subset of kafka.Writer we need.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by document ID so the events
// of one record stay ordered within a partition.
type KafkaPublisher struct {
	writer Writer
}

// NewKafkaPublisher creates a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:                   skafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	b, err := json.Marshal(event)
	if err != nil {
		log.Println("failed to marshal event:", err)
		return err
	}
	msg := skafka.Message{
		Key:   []byte(event.DocumentID),
		Value: b,
		Headers: []skafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Println("kafka write error:", err)
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher logs events instead of sending them anywhere. It is used
// when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	log.Printf("[event] %s %s/%s by %s", event.Type, event.Collection, event.DocumentID, event.ActorID)
	return nil
}

func (LogPublisher) Close() error { return nil }

// NewPublisher returns a kafka publisher when brokers are given and a log
// publisher otherwise.
func NewPublisher(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return LogPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}
