package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWriter records the messages written to it.
type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaPublisherPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaPublisherWithWriter(fw)

	event := New(InvoicePaymentRecorded, "invoices", "I1", "admin-1", map[string]string{"amount": "400"})
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, fw.msgs, 1)
	msg := fw.msgs[0]
	assert.Equal(t, "I1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, InvoicePaymentRecorded, string(msg.Headers[0].Value))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "invoices", decoded.Collection)
	assert.Equal(t, "admin-1", decoded.ActorID)
}

func TestKafkaPublisherReturnsWriteError(t *testing.T) {
	p := NewKafkaPublisherWithWriter(&fakeWriter{err: errors.New("broker down")})
	err := p.Publish(context.Background(), New(LeadCreated, "leads", "L1", "", nil))
	assert.EqualError(t, err, "broker down")
}

func TestNewPublisherFallsBackToLog(t *testing.T) {
	p := NewPublisher(nil, "topic")
	assert.IsType(t, LogPublisher{}, p)
	assert.NoError(t, p.Publish(context.Background(), New(LeadCreated, "leads", "L1", "u1", nil)))

	assert.IsType(t, &KafkaPublisher{}, NewPublisher([]string{"localhost:9092"}, "topic"))
}
