package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto con sus 3 ingredientes.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=100"`
	Kind          string          `json:"kind" validate:"required,oneof=CUP SHAKE"`
	PublicPrice   decimal.Decimal `json:"public_price"`
	CupStyle      *string         `json:"cup_style" validate:"omitempty,max=50"`
	VolumeOz      *int            `json:"volume_oz" validate:"omitempty,min=0"`
	IngredientIDs []string        `json:"ingredient_ids" validate:"required"`
}

// UpdateProductRequest entrada para editar un producto. Si IngredientIDs viene, reemplaza la composición.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Kind          *string          `json:"kind" validate:"omitempty,oneof=CUP SHAKE"`
	PublicPrice   *decimal.Decimal `json:"public_price"`
	CupStyle      *string          `json:"cup_style" validate:"omitempty,max=50"`
	VolumeOz      *int             `json:"volume_oz" validate:"omitempty,min=0"`
	IngredientIDs []string         `json:"ingredient_ids"`
}

// ProductIngredient ingrediente dentro de la respuesta de un producto.
type ProductIngredient struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Price    decimal.Decimal `json:"price"`
	Calories int             `json:"calories"`
	Stock    int             `json:"stock"`
}

// ProductResponse salida de un producto con sus valores derivados.
type ProductResponse struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Kind          string              `json:"kind"`
	PublicPrice   decimal.Decimal     `json:"public_price"`
	CupStyle      *string             `json:"cup_style,omitempty"`
	VolumeOz      *int                `json:"volume_oz,omitempty"`
	Ingredients   []ProductIngredient `json:"ingredients"`
	Cost          decimal.Decimal     `json:"cost"`
	Calories      int                 `json:"calories"`
	Profitability decimal.Decimal     `json:"profitability"`
	Available     bool                `json:"available"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ProductListResponse lista de productos (ordenada por nombre).
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
}

// ProductProfitability fila del ranking de rentabilidad.
type ProductProfitability struct {
	ProductID     string          `json:"product_id"`
	Name          string          `json:"name"`
	PublicPrice   decimal.Decimal `json:"public_price"`
	Cost          decimal.Decimal `json:"cost"`
	Profitability decimal.Decimal `json:"profitability"`
}

// ProfitabilityReport ranking descendente y el producto más rentable.
type ProfitabilityReport struct {
	MostProfitable ProductProfitability   `json:"most_profitable"`
	Ranking        []ProductProfitability `json:"ranking"`
}
