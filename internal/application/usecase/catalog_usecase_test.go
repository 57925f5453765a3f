package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/usecase"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/memory"
)

var (
	client   = access.NewActor("u-client", entity.RoleClient)
	employee = access.NewActor("u-employee", entity.RoleEmployee)
	admin    = access.NewActor("u-admin", entity.RoleAdministrator)
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

type catalog struct {
	store       *memory.Store
	ingredients *usecase.IngredientUseCase
	products    *usecase.ProductUseCase
}

func newCatalog() *catalog {
	s := memory.NewStore()
	return &catalog{
		store:       s,
		ingredients: usecase.NewIngredientUseCase(s.Ingredients(), s.Products(), s.Movements(), s),
		products:    usecase.NewProductUseCase(s.Products(), s.Ingredients()),
	}
}

func (c *catalog) ingredient(t *testing.T, name, kind, price string, stock int) *dto.IngredientResponse {
	t.Helper()
	out, err := c.ingredients.Create(context.Background(), employee, dto.CreateIngredientRequest{
		Name:     name,
		Kind:     kind,
		Price:    decimal.RequireFromString(price),
		Calories: 100,
		Stock:    stock,
	})
	require.NoError(t, err)
	return out
}

func (c *catalog) threeIngredients(t *testing.T) []string {
	t.Helper()
	a := c.ingredient(t, "Vainilla", "BASE", "2.50", 5)
	b := c.ingredient(t, "Chispas", "COMPLEMENT", "0.50", 5)
	d := c.ingredient(t, "Fresas", "COMPLEMENT", "0.60", 5)
	return []string{a.ID, b.ID, d.ID}
}

// Ingredientes

func TestCrearIngrediente_ClienteRechazado(t *testing.T) {
	c := newCatalog()
	_, err := c.ingredients.Create(context.Background(), client, dto.CreateIngredientRequest{
		Name: "Chocolate", Kind: "BASE", Price: decimal.RequireFromString("2.00"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, domain.IsAuthorization(err))

	n, err := c.store.Ingredients().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCrearIngrediente_EmpleadoPuede(t *testing.T) {
	c := newCatalog()
	out, err := c.ingredients.Create(context.Background(), employee, dto.CreateIngredientRequest{
		Name:       "  Chocolate ",
		Kind:       "BASE",
		Price:      decimal.RequireFromString("2.00"),
		Calories:   120,
		Stock:      8,
		Vegetarian: true,
		Flavor:     strPtr("cacao"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate", out.Name, "el nombre se normaliza")
	assert.Equal(t, 8, out.Stock)
	require.NotNil(t, out.Flavor)
	assert.Equal(t, "cacao", *out.Flavor)
}

func TestCrearIngrediente_Validaciones(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	cases := map[string]dto.CreateIngredientRequest{
		"precio negativo":   {Name: "X", Kind: "BASE", Price: decimal.RequireFromString("-1")},
		"calorías negativa": {Name: "X", Kind: "BASE", Calories: -5},
		"stock negativo":    {Name: "X", Kind: "BASE", Stock: -1},
		"tipo inválido":     {Name: "X", Kind: "TOPPING"},
		"sin nombre":        {Name: "   ", Kind: "BASE"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.ingredients.Create(ctx, employee, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCrearIngrediente_NombreDuplicado(t *testing.T) {
	c := newCatalog()
	c.ingredient(t, "Chocolate", "BASE", "2.00", 1)
	_, err := c.ingredients.Create(context.Background(), employee, dto.CreateIngredientRequest{Name: "Chocolate", Kind: "COMPLEMENT"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestActualizarIngrediente_StockNegativoHeredadoNoBloquea(t *testing.T) {
	c := newCatalog()
	ing := c.ingredient(t, "Chocolate", "BASE", "2.00", 1)
	require.NoError(t, c.store.Ingredients().UpdateStock(context.Background(), ing.ID, -4))

	out, err := c.ingredients.Update(context.Background(), employee, ing.ID, dto.UpdateIngredientRequest{Healthy: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, out.Healthy)
	assert.Equal(t, -4, out.Stock)

	_, err = c.ingredients.Update(context.Background(), employee, ing.ID, dto.UpdateIngredientRequest{Stock: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func boolPtr(b bool) *bool { return &b }

// hookedTx delega en el store y ejecuta afterRead justo después de leer el ingrediente dentro de la tx.
type hookedTx struct {
	store     *memory.Store
	afterRead func()
}

func (tx *hookedTx) Run(ctx context.Context, fn func(
	repository.IngredientRepository,
	repository.ProductRepository,
	repository.SaleRepository,
	repository.InventoryMovementRepository,
) error) error {
	return tx.store.Run(ctx, func(
		ing repository.IngredientRepository,
		prod repository.ProductRepository,
		sales repository.SaleRepository,
		mov repository.InventoryMovementRepository,
	) error {
		return fn(&hookedIngredients{IngredientRepository: ing, afterRead: tx.afterRead}, prod, sales, mov)
	})
}

type hookedIngredients struct {
	repository.IngredientRepository
	afterRead func()
}

func (r *hookedIngredients) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	ing, err := r.IngredientRepository.GetForUpdate(ctx, id)
	if r.afterRead != nil {
		r.afterRead()
	}
	return ing, err
}

func TestActualizarIngrediente_NoPisaDescuentoDeVenta(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	tx := &hookedTx{store: s}
	ingredients := usecase.NewIngredientUseCase(s.Ingredients(), s.Products(), s.Movements(), tx)
	ing, err := ingredients.Create(ctx, employee, dto.CreateIngredientRequest{
		Name: "Vainilla", Kind: "BASE", Price: decimal.RequireFromString("2.50"), Stock: 5,
	})
	require.NoError(t, err)

	// Una venta descuenta 1 entre la lectura y la escritura de la edición.
	tx.afterRead = func() {
		require.NoError(t, s.Ingredients().UpdateStock(ctx, ing.ID, 4))
	}
	out, err := ingredients.Update(ctx, employee, ing.ID, dto.UpdateIngredientRequest{Name: strPtr("Vainilla francesa")})
	require.NoError(t, err)
	assert.Equal(t, "Vainilla francesa", out.Name)
	assert.Equal(t, 4, out.Stock)

	stored, err := s.Ingredients().GetByID(ctx, ing.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Stock, "la edición sin stock conserva el descuento de la venta")

	movs, err := ingredients.Movements(ctx, employee, ing.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "sin cambio de stock no hay ajuste")
}

func TestActualizarIngrediente_AjusteDeStockQuedaEnElDiario(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	ing := c.ingredient(t, "Chispas", "COMPLEMENT", "0.50", 5)

	out, err := c.ingredients.Update(ctx, employee, ing.ID, dto.UpdateIngredientRequest{Stock: intPtr(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, out.Stock)

	movs, err := c.ingredients.Movements(ctx, employee, ing.ID, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.Equal(t, 4, movs[0].Delta)
	assert.Equal(t, 5, movs[0].StockBefore)
	assert.Equal(t, 9, movs[0].StockAfter)
	assert.Equal(t, "u-employee", movs[0].CreatedBy)
}

func TestEliminarIngrediente_EnUsoRechazado(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	ids := c.threeIngredients(t)
	_, err := c.products.Create(ctx, employee, dto.CreateProductRequest{
		Name: "Copa", Kind: "CUP", PublicPrice: decimal.RequireFromString("5.50"), IngredientIDs: ids,
	})
	require.NoError(t, err)

	err = c.ingredients.Delete(ctx, employee, ids[0])
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	libre := c.ingredient(t, "Menta", "BASE", "1.00", 0)
	require.NoError(t, c.ingredients.Delete(ctx, employee, libre.ID))
	_, err = c.ingredients.GetByID(ctx, employee, libre.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListarIngredientes_OrdenPorNombre(t *testing.T) {
	c := newCatalog()
	c.threeIngredients(t)
	out, err := c.ingredients.List(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, []string{"Chispas", "Fresas", "Vainilla"}, []string{out.Items[0].Name, out.Items[1].Name, out.Items[2].Name})

	_, err = c.ingredients.List(context.Background(), client)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// Productos

func TestCrearProducto_ValoresDerivados(t *testing.T) {
	c := newCatalog()
	out, err := c.products.Create(context.Background(), employee, dto.CreateProductRequest{
		Name:          "Copa clásica",
		Kind:          "CUP",
		PublicPrice:   decimal.RequireFromString("5.50"),
		CupStyle:      strPtr("vidrio"),
		IngredientIDs: c.threeIngredients(t),
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.60").Equal(out.Cost))
	assert.True(t, decimal.RequireFromString("1.90").Equal(out.Profitability))
	assert.Equal(t, 300, out.Calories)
	assert.True(t, out.Available)
	require.Len(t, out.Ingredients, 3)
	assert.Equal(t, "Vainilla", out.Ingredients[0].Name, "la composición conserva el orden de alta")
}

func TestCrearProducto_Composicion(t *testing.T) {
	c := newCatalog()
	ids := c.threeIngredients(t)
	ctx := context.Background()
	base := dto.CreateProductRequest{Name: "Copa", Kind: "CUP", PublicPrice: decimal.RequireFromString("5")}

	for name, composition := range map[string][]string{
		"dos ingredientes":    ids[:2],
		"cuatro ingredientes": append(append([]string{}, ids...), ids[0]),
		"repetido":            {ids[0], ids[0], ids[1]},
		"inexistente":         {ids[0], ids[1], "no-existe"},
	} {
		t.Run(name, func(t *testing.T) {
			in := base
			in.IngredientIDs = composition
			_, err := c.products.Create(ctx, employee, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCrearProducto_NombreDuplicado(t *testing.T) {
	c := newCatalog()
	ids := c.threeIngredients(t)
	in := dto.CreateProductRequest{Name: "Copa", Kind: "SHAKE", PublicPrice: decimal.RequireFromString("5"), VolumeOz: intPtr(12), IngredientIDs: ids}
	_, err := c.products.Create(context.Background(), employee, in)
	require.NoError(t, err)
	_, err = c.products.Create(context.Background(), employee, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestActualizarProducto_ReemplazaComposicion(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	ids := c.threeIngredients(t)
	p, err := c.products.Create(ctx, employee, dto.CreateProductRequest{
		Name: "Copa", Kind: "CUP", PublicPrice: decimal.RequireFromString("5.50"), IngredientIDs: ids,
	})
	require.NoError(t, err)

	menta := c.ingredient(t, "Menta", "COMPLEMENT", "1.00", 2)
	out, err := c.products.Update(ctx, employee, p.ID, dto.UpdateProductRequest{
		IngredientIDs: []string{ids[0], ids[1], menta.ID},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("4.00").Equal(out.Cost))

	_, err = c.products.Update(ctx, client, p.ID, dto.UpdateProductRequest{Name: strPtr("Otra")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListarProductos_Publico(t *testing.T) {
	c := newCatalog()
	ids := c.threeIngredients(t)
	_, err := c.products.Create(context.Background(), employee, dto.CreateProductRequest{
		Name: "Copa", Kind: "CUP", PublicPrice: decimal.RequireFromString("5.50"), IngredientIDs: ids,
	})
	require.NoError(t, err)

	out, err := c.products.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
}

func TestMasRentable(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()

	_, err := c.products.MostProfitable(ctx, admin)
	assert.ErrorIs(t, err, domain.ErrNotFound, "sin productos no hay ranking")

	ids := c.threeIngredients(t)
	for name, price := range map[string]string{"Barata": "3.00", "Cara": "9.00", "Media": "5.50"} {
		_, err := c.products.Create(ctx, employee, dto.CreateProductRequest{
			Name: name, Kind: "CUP", PublicPrice: decimal.RequireFromString(price), IngredientIDs: ids,
		})
		require.NoError(t, err)
	}

	_, err = c.products.MostProfitable(ctx, employee)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	report, err := c.products.MostProfitable(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "Cara", report.MostProfitable.Name)
	require.Len(t, report.Ranking, 3)
	assert.Equal(t, "Barata", report.Ranking[2].Name)
	assert.True(t, report.Ranking[2].Profitability.IsNegative(), "la rentabilidad puede ser negativa")
}

func TestEliminarProducto(t *testing.T) {
	c := newCatalog()
	ctx := context.Background()
	p, err := c.products.Create(ctx, employee, dto.CreateProductRequest{
		Name: "Copa", Kind: "CUP", PublicPrice: decimal.RequireFromString("5.50"), IngredientIDs: c.threeIngredients(t),
	})
	require.NoError(t, err)

	require.NoError(t, c.products.Delete(ctx, employee, p.ID))
	_, err = c.products.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, c.products.Delete(ctx, employee, p.ID), domain.ErrNotFound)
}
