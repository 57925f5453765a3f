// Package catalog contiene la lógica de composición de productos: validación de los
// tres ingredientes y los valores derivados (costo, calorías, rentabilidad, disponibilidad).
package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// ValidateComposition verifica que la composición tenga exactamente 3 ingredientes distintos.
func ValidateComposition(ingredientIDs []string) error {
	if len(ingredientIDs) != entity.CompositionSize {
		return domain.NewValidationError("ingredient_ids",
			fmt.Sprintf("debes seleccionar exactamente %d ingredientes", entity.CompositionSize))
	}
	seen := make(map[string]struct{}, len(ingredientIDs))
	for _, id := range ingredientIDs {
		if id == "" {
			return domain.NewValidationError("ingredient_ids", "id de ingrediente vacío")
		}
		if _, dup := seen[id]; dup {
			return domain.NewValidationError("ingredient_ids", "ingrediente repetido en el producto: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Cost suma el precio de los ingredientes (lo que cuesta preparar el producto).
func Cost(p *entity.Product) decimal.Decimal {
	total := decimal.Zero
	for _, ing := range p.Ingredients {
		total = total.Add(ing.Price)
	}
	return total
}

// Calories suma las calorías de los ingredientes.
func Calories(p *entity.Product) int {
	total := 0
	for _, ing := range p.Ingredients {
		total += ing.Calories
	}
	return total
}

// Profitability = PublicPrice - Cost. Puede ser negativa; no se recorta.
func Profitability(p *entity.Product) decimal.Decimal {
	return p.PublicPrice.Sub(Cost(p))
}

// IsAvailable es true si todos los ingredientes tienen stock > 0.
// Comprueba positividad, no suficiencia para una cantidad dada.
func IsAvailable(p *entity.Product) bool {
	for _, ing := range p.Ingredients {
		if ing.Stock <= 0 {
			return false
		}
	}
	return true
}

// HasStockFor es true si cada ingrediente cubre la cantidad pedida (modo estricto de ventas).
func HasStockFor(p *entity.Product, quantity int) bool {
	for _, ing := range p.Ingredients {
		if ing.Stock < quantity {
			return false
		}
	}
	return true
}
