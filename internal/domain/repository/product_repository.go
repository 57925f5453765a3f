package repository

import (
	"context"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product y su composición (DIP).
// Create y Update persisten el producto junto con sus 3 ingredientes (tabla product_ingredients).
// GetByID y List devuelven los ingredientes cargados en orden de inserción.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	// CountByIngredient cuántos productos usan el ingrediente.
	CountByIngredient(ctx context.Context, ingredientID string) (int, error)
}
