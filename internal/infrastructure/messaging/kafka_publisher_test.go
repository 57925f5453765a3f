package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/messaging"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish_MensajeConClaveHeaderYJSON(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewKafkaPublisherWithWriter(w, time.Second)
	at := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), ports.Event{
		Type:       ports.EventSaleRecorded,
		Key:        "42",
		OccurredAt: at,
		Payload:    map[string]any{"sale_id": 42},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "42", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event-type", msg.Headers[0].Key)
	assert.Equal(t, ports.EventSaleRecorded, string(msg.Headers[0].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.EqualValues(t, 42, body["sale_id"])
	assert.True(t, w.deadline, "la escritura debe llevar timeout")
}

func TestPublish_ErrorDelBrokerSePropaga(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker caído")}
	p := messaging.NewKafkaPublisherWithWriter(w, 0)

	err := p.Publish(context.Background(), ports.Event{Type: ports.EventIngredientsRenewed, Payload: struct{}{}})
	assert.ErrorContains(t, err, "broker caído")
}

func TestPublish_PayloadNoSerializable(t *testing.T) {
	w := &fakeWriter{}
	p := messaging.NewKafkaPublisherWithWriter(w, 0)

	err := p.Publish(context.Background(), ports.Event{Type: "x", Payload: make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, w.msgs)
}

func TestClose_CierraWriter(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, messaging.NewKafkaPublisherWithWriter(w, 0).Close())
	assert.True(t, w.closed)
}
