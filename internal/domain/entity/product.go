package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductKind presentación del producto.
type ProductKind string

// Tipos de producto.
const (
	ProductCup   ProductKind = "CUP"
	ProductShake ProductKind = "SHAKE"
)

// Valid indica si el tipo pertenece al enumerado.
func (k ProductKind) Valid() bool {
	return k == ProductCup || k == ProductShake
}

// CompositionSize número exacto de ingredientes por producto.
const CompositionSize = 3

// Product representa una copa o malteada de la carta.
// CupStyle (copas) y VolumeOz (malteadas) son excluyentes solo por convención: ambos pueden venir informados.
type Product struct {
	ID          string
	Name        string
	PublicPrice decimal.Decimal
	Kind        ProductKind
	CupStyle    *string
	VolumeOz    *int
	Ingredients []Ingredient // composición ordenada por inserción (exactamente 3)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IngredientIDs devuelve los IDs de la composición en orden.
func (p *Product) IngredientIDs() []string {
	ids := make([]string, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		ids = append(ids, ing.ID)
	}
	return ids
}
