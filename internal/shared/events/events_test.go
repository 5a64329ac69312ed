package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestBus_Publish(t *testing.T) {
	bus := NewBus(nil)

	var typed, all []string
	bus.Register(NewHandlerFunc([]string{TypeOrderCreated}, func(e Event) error {
		typed = append(typed, e.EventType())
		return errors.New("handler failure does not stop others")
	}))
	bus.Register(NewHandlerFunc([]string{"*"}, func(e Event) error {
		all = append(all, e.EventType())
		return nil
	}))

	bus.Publish(NewOrderCreatedEvent("ORD_1", "CUST_1", 42, 2))
	bus.Publish(NewOrderStatusChangedEvent("ORD_1", "pending", "confirmed"))

	assert.Equal(t, []string{TypeOrderCreated}, typed)
	assert.Equal(t, []string{TypeOrderCreated, TypeOrderStatusChanged}, all)
}

func TestKafkaForwarder_Handle(t *testing.T) {
	w := &fakeWriter{}
	f := NewKafkaForwarder(w, "datalake.events", nil)

	event := NewPaymentRefundedEvent("PAY_1", "REF_1", "ORD_1", 10, 10, "USD", "refunded")
	require.NoError(t, f.Handle(event))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "PAY_1", string(msg.Key))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypePaymentRefunded, decoded["event_type"])
	assert.Equal(t, "REF_1", decoded["refund_id"])
	assert.Equal(t, "refunded", decoded["payment_status"])
}

func TestKafkaForwarder_WriteError(t *testing.T) {
	f := NewKafkaForwarder(&fakeWriter{err: errors.New("broker down")}, "t", nil)
	err := f.Handle(NewOrderCreatedEvent("ORD_1", "CUST_1", 1, 1))
	assert.ErrorContains(t, err, "broker down")
}
