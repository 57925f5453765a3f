package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIngredientRequest entrada para crear un ingrediente.
type CreateIngredientRequest struct {
	Name       string          `json:"name" validate:"required,min=1,max=100"`
	Kind       string          `json:"kind" validate:"required,oneof=BASE COMPLEMENT"`
	Price      decimal.Decimal `json:"price"`
	Calories   int             `json:"calories" validate:"min=0"`
	Stock      int             `json:"stock" validate:"min=0"`
	Vegetarian bool            `json:"vegetarian"`
	Healthy    bool            `json:"healthy"`
	Flavor     *string         `json:"flavor" validate:"omitempty,max=100"`
}

// UpdateIngredientRequest entrada para editar un ingrediente (campos opcionales).
type UpdateIngredientRequest struct {
	Name       *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Kind       *string          `json:"kind" validate:"omitempty,oneof=BASE COMPLEMENT"`
	Price      *decimal.Decimal `json:"price"`
	Calories   *int             `json:"calories" validate:"omitempty,min=0"`
	Stock      *int             `json:"stock" validate:"omitempty,min=0"`
	Vegetarian *bool            `json:"vegetarian"`
	Healthy    *bool            `json:"healthy"`
	Flavor     *string          `json:"flavor" validate:"omitempty,max=100"`
}

// IngredientResponse salida de un ingrediente.
type IngredientResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Price      decimal.Decimal `json:"price"`
	Calories   int             `json:"calories"`
	Stock      int             `json:"stock"`
	Vegetarian bool            `json:"vegetarian"`
	Healthy    bool            `json:"healthy"`
	Flavor     *string         `json:"flavor,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IngredientListResponse lista de ingredientes (ordenada por nombre).
type IngredientListResponse struct {
	Items []IngredientResponse `json:"items"`
}

// RenewIngredientsRequest IDs de ingredientes a renovar.
type RenewIngredientsRequest struct {
	IngredientIDs []string `json:"ingredient_ids" validate:"required,min=1,dive,required"`
}

// RenewIngredientsResponse resultado de la renovación: solo los complementos cuentan.
type RenewIngredientsResponse struct {
	Renewed int      `json:"renewed"`
	Skipped []string `json:"skipped"` // bases o IDs inexistentes
}

// InventoryMovementResponse entrada del diario de stock.
type InventoryMovementResponse struct {
	ID           string    `json:"id"`
	IngredientID string    `json:"ingredient_id"`
	Type         string    `json:"type"`
	Delta        int       `json:"delta"`
	StockBefore  int       `json:"stock_before"`
	StockAfter   int       `json:"stock_after"`
	Reference    string    `json:"reference,omitempty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}
