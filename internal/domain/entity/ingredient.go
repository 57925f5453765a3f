package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngredientKind clasifica un ingrediente como base (sabor de helado) o complemento (topping).
type IngredientKind string

// Tipos de ingrediente.
const (
	IngredientBase       IngredientKind = "BASE"
	IngredientComplement IngredientKind = "COMPLEMENT"
)

// Valid indica si el tipo pertenece al enumerado.
func (k IngredientKind) Valid() bool {
	return k == IngredientBase || k == IngredientComplement
}

// Ingredient representa un insumo del catálogo. Name es único.
// Stock se modifica solo por ventas y por renovación (ver domain/inventory).
type Ingredient struct {
	ID         string
	Name       string
	Price      decimal.Decimal // precio unitario (>= 0)
	Calories   int             // calorías por porción
	Stock      int             // unidades disponibles; puede quedar negativo tras una venta (guardia stock > 0)
	Vegetarian bool
	Healthy    bool
	Kind       IngredientKind
	Flavor     *string // solo tiene sentido para BASE
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
