package catalog_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/catalog"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

func ingredient(id, price string, calories, stock int) entity.Ingredient {
	return entity.Ingredient{
		ID:       id,
		Name:     id,
		Price:    decimal.RequireFromString(price),
		Calories: calories,
		Stock:    stock,
		Kind:     entity.IngredientComplement,
	}
}

// sundae producto del escenario de referencia: A(2.50) + B(0.50) + C(0.60), precio 5.50.
func sundae() *entity.Product {
	return &entity.Product{
		ID:          "p",
		Name:        "Copa Clásica",
		PublicPrice: decimal.RequireFromString("5.50"),
		Kind:        entity.ProductCup,
		Ingredients: []entity.Ingredient{
			ingredient("a", "2.50", 150, 5),
			ingredient("b", "0.50", 50, 5),
			ingredient("c", "0.60", 70, 5),
		},
	}
}

func TestCostoYRentabilidad_Escenario(t *testing.T) {
	p := sundae()

	assert.True(t, decimal.RequireFromString("3.60").Equal(catalog.Cost(p)), "costo = %s", catalog.Cost(p))
	assert.True(t, decimal.RequireFromString("1.90").Equal(catalog.Profitability(p)), "rentabilidad = %s", catalog.Profitability(p))
	assert.Equal(t, 270, catalog.Calories(p))
	assert.Len(t, p.Ingredients, entity.CompositionSize)
}

func TestRentabilidad_PuedeSerNegativa(t *testing.T) {
	p := sundae()
	p.PublicPrice = decimal.RequireFromString("1.00")

	got := catalog.Profitability(p)
	assert.True(t, decimal.RequireFromString("-2.60").Equal(got), "rentabilidad = %s", got)
	assert.True(t, got.Equal(p.PublicPrice.Sub(catalog.Cost(p))))
}

func TestIsAvailable(t *testing.T) {
	p := sundae()
	assert.True(t, catalog.IsAvailable(p))

	// Stock 1 basta aunque se pidan 10 unidades: solo se verifica positividad.
	for i := range p.Ingredients {
		p.Ingredients[i].Stock = 1
	}
	assert.True(t, catalog.IsAvailable(p))
	assert.False(t, catalog.HasStockFor(p, 10))

	p.Ingredients[2].Stock = 0
	assert.False(t, catalog.IsAvailable(p))

	p.Ingredients[2].Stock = -3
	assert.False(t, catalog.IsAvailable(p))
}

func TestValidateComposition(t *testing.T) {
	tests := []struct {
		name    string
		ids     []string
		wantErr bool
	}{
		{"exactamente tres", []string{"a", "b", "c"}, false},
		{"dos ingredientes", []string{"a", "b"}, true},
		{"cuatro ingredientes", []string{"a", "b", "c", "d"}, true},
		{"repetido", []string{"a", "b", "a"}, true},
		{"vacío", []string{"a", "", "c"}, true},
		{"nil", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.ValidateComposition(tt.ids)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "debe ser un error de validación")
		})
	}
}
