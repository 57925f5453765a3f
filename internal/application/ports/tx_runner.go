package ports

import (
	"context"

	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y ningún cambio queda persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ingredientRepo repository.IngredientRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}
