package ports

import (
	"context"
	"time"
)

// Tipos de evento publicados por la aplicación.
const (
	EventSaleRecorded       = "sale.recorded"
	EventIngredientsRenewed = "ingredients.renewed"
)

// Event evento de dominio ya confirmado (se publica después del Commit).
type Event struct {
	Type       string
	Key        string // clave de partición (ID de la venta, del actor, etc.)
	OccurredAt time.Time
	Payload    any
}

// EventPublisher puerto de salida hacia el broker de mensajes.
// Publicar es best-effort: un fallo no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher descarta los eventos (broker no configurado).
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
