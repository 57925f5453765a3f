// Package messaging publica los eventos de dominio en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/heladeria-api/internal/application/ports"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter lo que el publicador necesita de *kafka.Writer (sustituible en tests).
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implementa ports.EventPublisher sobre un kafka.Writer.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaPublisher crea el writer hacia topic. timeout acota cada escritura (5s si es 0).
func NewKafkaPublisher(brokers []string, topic string, timeout time.Duration) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, timeout)
}

// NewKafkaPublisherWithWriter usa un writer ya construido.
func NewKafkaPublisherWithWriter(writer MessageWriter, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaPublisher{writer: writer, timeout: timeout}
}

// Publish serializa el payload a JSON. La clave de partición es event.Key, así los eventos
// de la misma venta o ingrediente conservan el orden; el tipo viaja en el header "event-type".
func (p *KafkaPublisher) Publish(ctx context.Context, event ports.Event) error {
	value, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("kafka: serializar evento %s: %w", event.Type, err)
	}
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar evento %s: %w", event.Type, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
