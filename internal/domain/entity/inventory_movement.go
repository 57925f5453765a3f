package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeSale       = "SALE"       // descuento por venta
	MovementTypeRenewal    = "RENEWAL"    // renovación de complemento (stock a cero)
	MovementTypeAdjustment = "ADJUSTMENT" // corrección manual del stock
)

// InventoryMovement registra cada cambio de stock de un ingrediente.
type InventoryMovement struct {
	ID           string
	IngredientID string
	Type         string
	Delta        int // negativo en ventas
	StockBefore  int
	StockAfter   int
	Reference    string // ID de la venta cuando Type = SALE
	CreatedBy    string // UserID
	CreatedAt    time.Time
}
