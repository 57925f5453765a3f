package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registra una compra. Una vez creada no se modifica: solo existe el alta.
type Sale struct {
	ID        int64 // autoincremental; 0 = aún no persistida
	ProductID string
	UserID    string
	Quantity  int
	Total     decimal.Decimal // PublicPrice × Quantity al momento de la venta
	CreatedAt time.Time
}

// IsPersisted indica si la venta ya tiene identidad asignada por el almacenamiento.
func (s *Sale) IsPersisted() bool {
	return s.ID != 0
}

// SaleWithDetails venta con nombres resueltos para listados y comprobantes.
type SaleWithDetails struct {
	Sale
	ProductName string
	Username    string
}
