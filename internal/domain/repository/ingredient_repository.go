package repository

import (
	"context"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
// GetByID devuelve (nil, nil) si no existe.
type IngredientRepository interface {
	Create(ctx context.Context, ing *entity.Ingredient) error
	GetByID(ctx context.Context, id string) (*entity.Ingredient, error)
	GetByName(ctx context.Context, name string) (*entity.Ingredient, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error)
	// Update guarda los datos editables; el stock solo cambia con UpdateStock.
	Update(ctx context.Context, ing *entity.Ingredient) error
	UpdateStock(ctx context.Context, id string, stock int) error
	List(ctx context.Context) ([]*entity.Ingredient, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
