package repository

import (
	"context"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para el diario de stock.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	ListByIngredient(ctx context.Context, ingredientID string, limit int) ([]*entity.InventoryMovement, error)
}
