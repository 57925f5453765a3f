package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

func seedCatalog(t *testing.T, s *Store) entity.Product {
	t.Helper()
	ctx := context.Background()
	var ings []entity.Ingredient
	for i, name := range []string{"Vainilla", "Chispas", "Fresas"} {
		ing := entity.Ingredient{ID: name, Name: name, Kind: entity.IngredientComplement, Price: decimal.NewFromInt(int64(i + 1)), Stock: 5}
		require.NoError(t, s.Ingredients().Create(ctx, &ing))
		ings = append(ings, ing)
	}
	p := entity.Product{ID: "copa", Name: "Copa", Kind: entity.ProductCup, PublicPrice: decimal.NewFromInt(10), Ingredients: ings}
	require.NoError(t, s.Products().Create(ctx, &p))
	return p
}

func TestRun_RevierteAnteError(t *testing.T) {
	s := NewStore()
	p := seedCatalog(t, s)
	ctx := context.Background()
	boom := errors.New("fallo simulado")

	err := s.Run(ctx, func(ing repository.IngredientRepository, _ repository.ProductRepository, sales repository.SaleRepository, mov repository.InventoryMovementRepository) error {
		require.NoError(t, ing.UpdateStock(ctx, "Vainilla", 0))
		require.NoError(t, sales.Create(ctx, &entity.Sale{ProductID: p.ID, Quantity: 1, CreatedAt: time.Now()}))
		require.NoError(t, mov.Create(ctx, &entity.InventoryMovement{ID: "m1", IngredientID: "Vainilla"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ing, err := s.Ingredients().GetByID(ctx, "Vainilla")
	require.NoError(t, err)
	assert.Equal(t, 5, ing.Stock)
	summary, err := s.Sales().Summarize(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Zero(t, summary.Count)
	movs, err := s.Movements().ListByIngredient(ctx, "Vainilla", 0)
	require.NoError(t, err)
	assert.Empty(t, movs)

	// El contador de IDs también vuelve atrás.
	sale := &entity.Sale{ProductID: p.ID, Quantity: 1, CreatedAt: time.Now()}
	require.NoError(t, s.Sales().Create(ctx, sale))
	assert.EqualValues(t, 1, sale.ID)
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := s.Run(ctx, func(repository.IngredientRepository, repository.ProductRepository, repository.SaleRepository, repository.InventoryMovementRepository) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestProducto_ComposicionSeResuelveEnLectura(t *testing.T) {
	s := NewStore()
	seedCatalog(t, s)
	ctx := context.Background()
	require.NoError(t, s.Ingredients().UpdateStock(ctx, "Chispas", -3))

	p, err := s.Products().GetByID(ctx, "copa")
	require.NoError(t, err)
	require.Len(t, p.Ingredients, 3)
	assert.Equal(t, []string{"Vainilla", "Chispas", "Fresas"}, p.IngredientIDs())
	assert.Equal(t, -3, p.Ingredients[1].Stock)
}

func TestActualizarIngrediente_NoEscribeStock(t *testing.T) {
	s := NewStore()
	seedCatalog(t, s)
	ctx := context.Background()

	stale, err := s.Ingredients().GetByID(ctx, "Vainilla")
	require.NoError(t, err)
	require.NoError(t, s.Ingredients().UpdateStock(ctx, "Vainilla", 4))

	stale.Name = "Vainilla francesa"
	require.NoError(t, s.Ingredients().Update(ctx, stale))

	ing, err := s.Ingredients().GetByID(ctx, "Vainilla")
	require.NoError(t, err)
	assert.Equal(t, "Vainilla francesa", ing.Name)
	assert.Equal(t, 4, ing.Stock)
}

func TestDuplicados(t *testing.T) {
	s := NewStore()
	p := seedCatalog(t, s)
	ctx := context.Background()

	err := s.Ingredients().Create(ctx, &entity.Ingredient{ID: "otro", Name: "Vainilla"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	clone := p
	clone.ID = "copa-2"
	assert.ErrorIs(t, s.Products().Create(ctx, &clone), domain.ErrDuplicate)

	clone.Name = "Copa repetida"
	clone.Ingredients = []entity.Ingredient{p.Ingredients[0], p.Ingredients[0], p.Ingredients[1]}
	assert.ErrorIs(t, s.Products().Create(ctx, &clone), domain.ErrInvalidInput)

	u := entity.User{ID: "u1", Username: "ana"}
	require.NoError(t, s.Users().Create(ctx, &u))
	u.ID = "u2"
	assert.ErrorIs(t, s.Users().Create(ctx, &u), domain.ErrUsernameAlreadyTaken)
}

func TestEliminarProducto_BorraSusVentas(t *testing.T) {
	s := NewStore()
	p := seedCatalog(t, s)
	ctx := context.Background()
	require.NoError(t, s.Sales().Create(ctx, &entity.Sale{ProductID: p.ID, Quantity: 2, CreatedAt: time.Now()}))

	require.NoError(t, s.Products().Delete(ctx, p.ID))
	list, err := s.Sales().List(ctx, repository.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, s.Sales().Create(ctx, &entity.Sale{ProductID: p.ID}), domain.ErrNotFound)
}

func TestEliminarIngrediente_EnUso(t *testing.T) {
	s := NewStore()
	seedCatalog(t, s)
	err := s.Ingredients().Delete(context.Background(), "Chispas")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := s.Products().CountByIngredient(context.Background(), "Chispas")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVentas_FiltroInclusivoYOrden(t *testing.T) {
	s := NewStore()
	p := seedCatalog(t, s)
	ctx := context.Background()
	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	for i, h := range []int{9, 12, 23} {
		require.NoError(t, s.Sales().Create(ctx, &entity.Sale{
			ProductID: p.ID, UserID: "u1", Quantity: i + 1, Total: decimal.NewFromInt(10),
			CreatedAt: day.Add(time.Duration(h) * time.Hour),
		}))
	}
	to := day.Add(23 * time.Hour)
	list, err := s.Sales().List(ctx, repository.SaleFilter{From: &day, To: &to, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.EqualValues(t, 3, list[0].ID, "más recientes primero; To es inclusivo")
	assert.Equal(t, "Copa", list[0].ProductName)

	summary, err := s.Sales().Summarize(ctx, repository.SaleFilter{From: &day, To: &to, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, 6, summary.Units)
	assert.True(t, decimal.NewFromInt(30).Equal(summary.Revenue))
}
