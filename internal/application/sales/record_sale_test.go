package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

var (
	client   = access.NewActor("u-client", entity.RoleClient)
	employee = access.NewActor("u-employee", entity.RoleEmployee)
	admin    = access.NewActor("u-admin", entity.RoleAdministrator)
)

// recordingPublisher guarda los eventos publicados; err simula un broker caído.
type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	store *memory.Store
	pub   *recordingPublisher
	p     entity.Product
}

// newFixture crea A(2.50) + B(0.50) + C(0.60) con el stock dado y el producto P a 5.50.
func newFixture(t *testing.T, stocks ...int) *fixture {
	t.Helper()
	if len(stocks) == 0 {
		stocks = []int{5, 5, 5}
	}
	ctx := context.Background()
	store := memory.NewStore()
	for _, u := range []access.Actor{client, employee, admin} {
		require.NoError(t, store.Users().Create(ctx, &entity.User{ID: u.UserID, Username: u.UserID, Role: u.Role, IsActive: true}))
	}
	prices := []string{"2.50", "0.50", "0.60"}
	names := []string{"A", "B", "C"}
	ings := make([]entity.Ingredient, 0, 3)
	for i, name := range names {
		ing := entity.Ingredient{
			ID:    "ing-" + name,
			Name:  name,
			Price: decimal.RequireFromString(prices[i]),
			Stock: stocks[i],
			Kind:  entity.IngredientComplement,
		}
		require.NoError(t, store.Ingredients().Create(ctx, &ing))
		ings = append(ings, ing)
	}
	p := entity.Product{
		ID:          "prod-P",
		Name:        "P",
		PublicPrice: decimal.RequireFromString("5.50"),
		Kind:        entity.ProductCup,
		Ingredients: ings,
	}
	require.NoError(t, store.Products().Create(ctx, &p))
	return &fixture{store: store, pub: &recordingPublisher{}, p: p}
}

func (f *fixture) useCase(policy StockPolicy) *RecordSaleUseCase {
	return NewRecordSaleUseCase(f.store, f.pub, policy, logger.Nop())
}

func (f *fixture) stocks(t *testing.T) []int {
	t.Helper()
	out := make([]int, 0, 3)
	for _, ing := range f.p.Ingredients {
		got, err := f.store.Ingredients().GetByID(context.Background(), ing.ID)
		require.NoError(t, err)
		out = append(out, got.Stock)
	}
	return out
}

func (f *fixture) saleCount(t *testing.T) int {
	t.Helper()
	s, err := f.store.Sales().Summarize(context.Background(), repository.SaleFilter{})
	require.NoError(t, err)
	return s.Count
}

func TestRecordSale_EscenarioReferencia(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(StockPolicyLegacy)

	out, err := uc.RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 2})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("11.00").Equal(out.Total), "total = %s", out.Total)
	assert.Equal(t, 2, out.Quantity)
	assert.Equal(t, client.UserID, out.UserID)
	assert.Equal(t, "P", out.ProductName)
	assert.Equal(t, []int{3, 3, 3}, f.stocks(t))

	movs, err := f.store.Movements().ListByIngredient(context.Background(), "ing-A", 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeSale, movs[0].Type)
	assert.Equal(t, -2, movs[0].Delta)
	assert.Equal(t, "1", movs[0].Reference)
}

func TestRecordSale_CantidadCeroEquivaleAUno(t *testing.T) {
	f := newFixture(t)
	out, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Quantity)
	assert.True(t, decimal.RequireFromString("5.50").Equal(out.Total))
	assert.Equal(t, []int{4, 4, 4}, f.stocks(t))
}

func TestRecordSale_CantidadNegativa(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, f.saleCount(t))
}

func TestRecordSale_SinStock_NoMutaNada(t *testing.T) {
	for _, policy := range []StockPolicy{StockPolicyLegacy, StockPolicyStrict} {
		f := newFixture(t, 5, 0, 5)
		_, err := f.useCase(policy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID})

		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, []int{5, 0, 5}, f.stocks(t), "el stock no debe cambiar")
		assert.Equal(t, 0, f.saleCount(t), "no debe quedar venta registrada")
		assert.Empty(t, f.pub.events, "no se publica evento de una venta rechazada")
	}
}

// Con la política histórica la guardia es stock > 0: una venta mayor al stock lo deja negativo.
func TestRecordSale_Legacy_PermiteStockNegativo(t *testing.T) {
	f := newFixture(t, 3, 3, 3)
	_, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, []int{-7, -7, -7}, f.stocks(t))
}

func TestRecordSale_Strict_RechazaCantidadMayorAlStock(t *testing.T) {
	f := newFixture(t, 3, 3, 3)
	_, err := f.useCase(StockPolicyStrict).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 10})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, []int{3, 3, 3}, f.stocks(t))

	_, err = f.useCase(StockPolicyStrict).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, f.stocks(t))
}

func TestRecordSale_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSale_Anonimo_NoAutorizado(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), access.Anonymous(), dto.RecordSaleRequest{ProductID: f.p.ID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, domain.IsAuthorization(err))
	assert.Equal(t, []int{5, 5, 5}, f.stocks(t))
}

func TestRecordSale_PublicaEventoTrasConfirmar(t *testing.T) {
	f := newFixture(t)
	out, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID})
	require.NoError(t, err)

	require.Len(t, f.pub.events, 1)
	ev := f.pub.events[0]
	assert.Equal(t, ports.EventSaleRecorded, ev.Type)
	payload, ok := ev.Payload.(dto.SaleRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, out.ID, payload.SaleID)
	assert.Equal(t, []string{"ing-A", "ing-B", "ing-C"}, payload.IngredientIDs)
}

func TestRecordSale_FalloDelBroker_NoRevierteLaVenta(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker caído")

	_, err := f.useCase(StockPolicyLegacy).RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, f.saleCount(t))
	assert.Equal(t, []int{4, 4, 4}, f.stocks(t))
}

// failingMovements hace fallar el diario para comprobar que la venta y el stock se revierten.
type failingMovements struct{ repository.InventoryMovementRepository }

func (failingMovements) Create(context.Context, *entity.InventoryMovement) error {
	return errors.New("diario no disponible")
}

type failingTx struct{ store *memory.Store }

func (r failingTx) Run(ctx context.Context, fn func(
	repository.IngredientRepository,
	repository.ProductRepository,
	repository.SaleRepository,
	repository.InventoryMovementRepository,
) error) error {
	return r.store.Run(ctx, func(i repository.IngredientRepository, p repository.ProductRepository, s repository.SaleRepository, m repository.InventoryMovementRepository) error {
		return fn(i, p, s, failingMovements{m})
	})
}

func TestRecordSale_FalloEnTransaccion_RevierteTodo(t *testing.T) {
	f := newFixture(t)
	uc := NewRecordSaleUseCase(failingTx{store: f.store}, f.pub, StockPolicyLegacy, logger.Nop())

	_, err := uc.RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 2})
	require.Error(t, err)
	assert.Equal(t, []int{5, 5, 5}, f.stocks(t))
	assert.Equal(t, 0, f.saleCount(t))
	assert.Empty(t, f.pub.events)
}

func TestSave_VentaExistente_NoTocaInventario(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(StockPolicyLegacy)

	created, err := uc.Save(context.Background(), client, &entity.Sale{ProductID: f.p.ID, Quantity: 2})
	require.NoError(t, err)
	require.True(t, created.IsPersisted())
	assert.Equal(t, []int{3, 3, 3}, f.stocks(t))

	again := *created
	again.Quantity = 99
	again.Total = decimal.Zero
	stored, err := uc.Save(context.Background(), client, &again)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 3, 3}, f.stocks(t), "re-guardar no descuenta stock")
	assert.Equal(t, 1, f.saleCount(t))
	assert.Equal(t, 2, stored.Quantity, "los campos almacenados no cambian")
	assert.True(t, decimal.RequireFromString("11.00").Equal(stored.Total))
}

func TestSave_VentaAjena_SoloDuenoOAdmin(t *testing.T) {
	f := newFixture(t)
	uc := f.useCase(StockPolicyLegacy)
	ctx := context.Background()
	created, err := uc.RecordSale(ctx, client, dto.RecordSaleRequest{ProductID: f.p.ID})
	require.NoError(t, err)
	existing := &entity.Sale{ID: created.ID, ProductID: f.p.ID}

	_, err = uc.Save(ctx, access.NewActor("otro-cliente", entity.RoleClient), existing)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Save(ctx, employee, existing)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := uc.Save(ctx, admin, existing)
	require.NoError(t, err)
	assert.Equal(t, "u-client", stored.UserID)
}

func TestSave_IDDesconocido(t *testing.T) {
	f := newFixture(t)
	_, err := f.useCase(StockPolicyLegacy).Save(context.Background(), client, &entity.Sale{ID: 42, ProductID: f.p.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSale_Concurrente_SerializaDescuentos(t *testing.T) {
	f := newFixture(t, 10, 10, 10)
	uc := f.useCase(StockPolicyStrict)

	var wg sync.WaitGroup
	errs := make(chan error, 15)
	for i := 0; i < 15; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordSale(context.Background(), client, dto.RecordSaleRequest{ProductID: f.p.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, rejected := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 5, rejected)
	assert.Equal(t, []int{0, 0, 0}, f.stocks(t))
}

func TestQuery_ListadoSoloAdmin(t *testing.T) {
	f := newFixture(t, 20, 20, 20)
	rec := f.useCase(StockPolicyLegacy)
	ctx := context.Background()
	_, err := rec.RecordSale(ctx, client, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = rec.RecordSale(ctx, employee, dto.RecordSaleRequest{ProductID: f.p.ID, Quantity: 3})
	require.NoError(t, err)

	q := NewQueryUseCase(f.store.Sales())
	_, err = q.List(ctx, employee, dto.SaleListQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := q.List(ctx, admin, dto.SaleListQuery{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.True(t, decimal.RequireFromString("22.00").Equal(out.TotalRevenue))
	assert.True(t, decimal.RequireFromString("22.00").Equal(out.TodayRevenue))
	assert.Equal(t, 2, out.TodayCount)

	// Los de hoy se calculan con el reloj del caso de uso.
	q.now = func() time.Time { return time.Now().AddDate(0, 0, 2) }
	out, err = q.List(ctx, admin, dto.SaleListQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.True(t, out.TodayRevenue.IsZero())
	assert.Equal(t, 0, out.TodayCount)

	mine, err := q.MyPurchases(ctx, client)
	require.NoError(t, err)
	assert.Len(t, mine.Items, 1)
	assert.True(t, decimal.RequireFromString("5.50").Equal(mine.TotalSpent))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultSaleListLimit, clampLimit(0))
	assert.Equal(t, defaultSaleListLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, maxSaleListLimit, clampLimit(10_000))
}
