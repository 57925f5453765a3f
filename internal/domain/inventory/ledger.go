package inventory

import "github.com/jhoicas/heladeria-api/internal/domain/entity"

// Renew "renueva" el inventario de un complemento: lo deja en cero.
// Las bases nunca se renuevan automáticamente: devuelve false y no cambia el stock.
func Renew(ing *entity.Ingredient) bool {
	if ing.Kind != entity.IngredientComplement {
		return false
	}
	ing.Stock = 0
	return true
}

// Decrement descuenta quantity del stock si el stock es positivo.
// La guardia es stock > 0 (no stock >= quantity), así que el stock puede quedar negativo.
// Devuelve el delta aplicado (0 si no se descontó).
func Decrement(ing *entity.Ingredient, quantity int) int {
	if ing.Stock <= 0 {
		return 0
	}
	ing.Stock -= quantity
	return -quantity
}
