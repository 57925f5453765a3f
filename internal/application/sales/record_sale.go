// Package sales contiene los casos de uso de ventas: registro transaccional con descuento de
// inventario, consultas (todas las ventas, mis compras), comprobante PDF y exportación XML.
package sales

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/catalog"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/inventory"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

// StockPolicy decide cuándo un producto se puede vender.
type StockPolicy int

const (
	// StockPolicyLegacy exige stock > 0 en cada ingrediente, sin importar la cantidad pedida.
	// Combinado con la guardia de Decrement, una venta grande deja stock negativo.
	StockPolicyLegacy StockPolicy = iota
	// StockPolicyStrict exige stock >= cantidad en cada ingrediente.
	StockPolicyStrict
)

// RecordSaleUseCase registra ventas. La venta y los descuentos de stock de sus 3 ingredientes
// se confirman o revierten juntos (TxRunner). Las filas de ingredientes se bloquean
// (SELECT FOR UPDATE) antes de verificar disponibilidad, así dos ventas concurrentes se serializan.
type RecordSaleUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
	policy    StockPolicy
	log       *logger.Logger
	now       func() time.Time
}

// NewRecordSaleUseCase construye el caso de uso.
func NewRecordSaleUseCase(
	txRunner ports.TxRunner,
	publisher ports.EventPublisher,
	policy StockPolicy,
	log *logger.Logger,
) *RecordSaleUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &RecordSaleUseCase{
		txRunner:  txRunner,
		publisher: publisher,
		policy:    policy,
		log:       log.Component("sales"),
		now:       time.Now,
	}
}

// RecordSale registra la compra de quantity unidades del producto por el actor.
// Quantity 0 equivale a 1. Devuelve ErrInsufficientStock sin mutar nada si el producto no está disponible.
func (uc *RecordSaleUseCase) RecordSale(ctx context.Context, actor access.Actor, in dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	sale, productName, err := uc.record(ctx, actor, in.ProductID, in.Quantity)
	if err != nil {
		return nil, err
	}
	return &dto.SaleResponse{
		ID:          sale.ID,
		ProductID:   sale.ProductID,
		ProductName: productName,
		UserID:      sale.UserID,
		Quantity:    sale.Quantity,
		Total:       sale.Total,
		CreatedAt:   sale.CreatedAt,
	}, nil
}

// Save persiste una venta. Si aún no tiene ID sigue el flujo de alta (con descuento de stock);
// si ya existe devuelve la venta almacenada sin tocar inventario ni modificar campos. Una venta
// existente solo la consulta su comprador o un administrador (ErrForbidden en otro caso).
func (uc *RecordSaleUseCase) Save(ctx context.Context, actor access.Actor, sale *entity.Sale) (*entity.Sale, error) {
	if sale == nil {
		return nil, domain.ErrInvalidInput
	}
	if !sale.IsPersisted() {
		created, _, err := uc.record(ctx, actor, sale.ProductID, sale.Quantity)
		return created, err
	}
	if err := access.Authorize(actor, access.OpRecordSale); err != nil {
		return nil, err
	}
	var stored *entity.Sale
	err := uc.txRunner.Run(ctx, func(
		_ repository.IngredientRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.InventoryMovementRepository,
	) error {
		found, err := saleRepo.GetByID(ctx, sale.ID)
		if err != nil {
			return err
		}
		if found == nil {
			return domain.ErrNotFound
		}
		if found.UserID != actor.UserID && !access.IsAdmin(actor) {
			return domain.ErrForbidden
		}
		s := found.Sale
		stored = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (uc *RecordSaleUseCase) record(ctx context.Context, actor access.Actor, productID string, quantity int) (*entity.Sale, string, error) {
	if err := access.Authorize(actor, access.OpRecordSale); err != nil {
		return nil, "", err
	}
	if productID == "" {
		return nil, "", domain.NewValidationError("product_id", "el producto es requerido")
	}
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, "", domain.NewValidationError("quantity", "la cantidad debe ser al menos 1")
	}

	var (
		sale        *entity.Sale
		product     *entity.Product
		movedStocks = map[string]int{}
	)
	err := uc.txRunner.Run(ctx, func(
		ingredientRepo repository.IngredientRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := lockIngredients(ctx, ingredientRepo, p); err != nil {
			return err
		}
		if !uc.available(p, quantity) {
			return domain.ErrInsufficientStock
		}

		now := uc.now()
		s := &entity.Sale{
			ProductID: p.ID,
			UserID:    actor.UserID,
			Quantity:  quantity,
			Total:     p.PublicPrice.Mul(decimal.NewFromInt(int64(quantity))),
			CreatedAt: now,
		}
		if err := saleRepo.Create(ctx, s); err != nil {
			return err
		}

		ref := strconv.FormatInt(s.ID, 10)
		for i := range p.Ingredients {
			ing := &p.Ingredients[i]
			before := ing.Stock
			delta := inventory.Decrement(ing, quantity)
			if delta == 0 {
				continue
			}
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, ing.Stock); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, &entity.InventoryMovement{
				ID:           uuid.New().String(),
				IngredientID: ing.ID,
				Type:         entity.MovementTypeSale,
				Delta:        delta,
				StockBefore:  before,
				StockAfter:   ing.Stock,
				Reference:    ref,
				CreatedBy:    actor.UserID,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
			movedStocks[ing.ID] = ing.Stock
		}
		sale, product = s, p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Info().Str("product_id", productID).Int("quantity", quantity).Msg("venta rechazada: sin inventario")
		}
		return nil, "", err
	}

	ev := uc.log.Info().
		Int64("sale_id", sale.ID).
		Str("product_id", sale.ProductID).
		Str("user_id", sale.UserID).
		Int("quantity", sale.Quantity).
		Str("total", sale.Total.StringFixed(2))
	for id, stock := range movedStocks {
		if stock < 0 {
			ev = ev.Int("negative_stock."+id, stock)
		}
	}
	ev.Msg("venta registrada")

	uc.publishRecorded(ctx, sale, product)
	return sale, product.Name, nil
}

func (uc *RecordSaleUseCase) available(p *entity.Product, quantity int) bool {
	if uc.policy == StockPolicyStrict {
		return catalog.IsAvailable(p) && catalog.HasStockFor(p, quantity)
	}
	return catalog.IsAvailable(p)
}

func (uc *RecordSaleUseCase) publishRecorded(ctx context.Context, sale *entity.Sale, p *entity.Product) {
	event := ports.Event{
		Type:       ports.EventSaleRecorded,
		Key:        strconv.FormatInt(sale.ID, 10),
		OccurredAt: sale.CreatedAt,
		Payload: dto.SaleRecordedEvent{
			SaleID:        sale.ID,
			ProductID:     sale.ProductID,
			UserID:        sale.UserID,
			Quantity:      sale.Quantity,
			Total:         sale.Total,
			IngredientIDs: p.IngredientIDs(),
			CreatedAt:     sale.CreatedAt,
		},
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Warn().Err(err).Str("event", event.Type).Int64("sale_id", sale.ID).Msg("no se pudo publicar el evento")
	}
}

// lockIngredients bloquea las filas de los ingredientes en orden de ID (evita deadlocks entre
// ventas que comparten ingredientes) y reemplaza la composición con los valores bloqueados.
func lockIngredients(ctx context.Context, repo repository.IngredientRepository, p *entity.Product) error {
	if len(p.Ingredients) != entity.CompositionSize {
		return domain.NewValidationError("ingredients", "el producto no tiene una composición válida")
	}
	ids := p.IngredientIDs()
	sort.Strings(ids)
	locked := make(map[string]*entity.Ingredient, len(ids))
	for _, id := range ids {
		ing, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		locked[id] = ing
	}
	for i := range p.Ingredients {
		p.Ingredients[i] = *locked[p.Ingredients[i].ID]
	}
	return nil
}
