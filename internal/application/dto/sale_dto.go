package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordSaleRequest entrada para registrar una venta. Quantity 0 equivale a 1.
type RecordSaleRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID          int64           `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	UserID      string          `json:"user_id"`
	Username    string          `json:"username,omitempty"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SaleListQuery filtros del listado de ventas (administrador).
type SaleListQuery struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
}

// SaleListResponse últimas ventas y estadísticas globales.
type SaleListResponse struct {
	Items        []SaleResponse  `json:"items"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	TodayCount   int             `json:"today_count"`
}

// MyPurchasesResponse compras del usuario autenticado.
type MyPurchasesResponse struct {
	Items      []SaleResponse  `json:"items"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// SaleRecordedEvent payload del evento sale.recorded.
type SaleRecordedEvent struct {
	SaleID        int64           `json:"sale_id"`
	ProductID     string          `json:"product_id"`
	UserID        string          `json:"user_id"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
	IngredientIDs []string        `json:"ingredient_ids"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IngredientsRenewedEvent payload del evento ingredients.renewed.
type IngredientsRenewedEvent struct {
	IngredientIDs []string  `json:"ingredient_ids"`
	RenewedBy     string    `json:"renewed_by"`
	RenewedAt     time.Time `json:"renewed_at"`
}
