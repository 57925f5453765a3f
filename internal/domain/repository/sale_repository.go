package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// SaleFilter filtros de consulta de ventas. Campos vacíos no filtran.
type SaleFilter struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int // 0 = sin límite
}

// SalesSummary agregados de un conjunto de ventas.
type SalesSummary struct {
	Count   int
	Units   int
	Revenue decimal.Decimal
}

// SaleRepository define el puerto de persistencia para Sale. No hay Update: las ventas son inmutables.
type SaleRepository interface {
	// Create inserta la venta y asigna sale.ID.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id int64) (*entity.SaleWithDetails, error)
	// List devuelve las ventas más recientes primero.
	List(ctx context.Context, filter SaleFilter) ([]entity.SaleWithDetails, error)
	// Summarize ignora filter.Limit.
	Summarize(ctx context.Context, filter SaleFilter) (SalesSummary, error)
}
