package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-service/internal/application/inventory"
	"github.com/jhoicas/inventory-service/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

var _ inventory.EventPublisher = (*EventProducer)(nil)

// NewWriter construye el writer de Kafka para el tópico de inventario.
// RequireAll: el broker confirma la réplica completa antes del ack.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}
}

// EventProducer publica eventos de dominio en Kafka, serializados como JSON y
// con el ID del evento como key del mensaje. El caller trata el fallo como no
// fatal: la publicación ocurre después del commit.
type EventProducer struct {
	writer *kafka.Writer
}

// NewEventProducer construye el publicador sobre un writer ya configurado.
func NewEventProducer(writer *kafka.Writer) *EventProducer {
	return &EventProducer{writer: writer}
}

// Publish serializa y envía el evento.
func (p *EventProducer) Publish(ctx context.Context, ev event.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("produce event: %w", err)
	}
	return nil
}

// Close cierra el writer subyacente.
func (p *EventProducer) Close() error {
	return p.writer.Close()
}
