package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

const defaultMovementsLimit = 100

// IngredientUseCase casos de uso CRUD para ingredientes (empleados y administradores).
// El stock se edita aquí solo como dato de alta o ajuste; ventas y renovaciones pasan por el ledger.
type IngredientUseCase struct {
	repo        repository.IngredientRepository
	productRepo repository.ProductRepository
	movRepo     repository.InventoryMovementRepository
	txRunner    ports.TxRunner
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(
	repo repository.IngredientRepository,
	productRepo repository.ProductRepository,
	movRepo repository.InventoryMovementRepository,
	txRunner ports.TxRunner,
) *IngredientUseCase {
	return &IngredientUseCase{repo: repo, productRepo: productRepo, movRepo: movRepo, txRunner: txRunner}
}

// Create crea un ingrediente. Devuelve ErrDuplicate si el nombre ya existe.
func (uc *IngredientUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	if err := access.Authorize(actor, access.OpCreateIngredient); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es requerido")
	}
	kind := entity.IngredientKind(in.Kind)
	if !kind.Valid() {
		return nil, domain.NewValidationError("kind", "tipo debe ser BASE o COMPLEMENT")
	}
	if err := validateIngredientNumbers(in.Price, in.Calories, in.Stock); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	ing := &entity.Ingredient{
		ID:         uuid.New().String(),
		Name:       name,
		Price:      in.Price,
		Calories:   in.Calories,
		Stock:      in.Stock,
		Vegetarian: in.Vegetarian,
		Healthy:    in.Healthy,
		Kind:       kind,
		Flavor:     normalizeOptional(in.Flavor),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.repo.Create(ctx, ing); err != nil {
		return nil, err
	}
	return toIngredientResponse(ing), nil
}

// GetByID obtiene un ingrediente. ErrNotFound si no existe.
func (uc *IngredientUseCase) GetByID(ctx context.Context, actor access.Actor, id string) (*dto.IngredientResponse, error) {
	if err := access.Authorize(actor, access.OpListIngredients); err != nil {
		return nil, err
	}
	ing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	return toIngredientResponse(ing), nil
}

// List lista todos los ingredientes ordenados por nombre.
func (uc *IngredientUseCase) List(ctx context.Context, actor access.Actor) (*dto.IngredientListResponse, error) {
	if err := access.Authorize(actor, access.OpListIngredients); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		items = append(items, *toIngredientResponse(ing))
	}
	return &dto.IngredientListResponse{Items: items}, nil
}

// Update edita un ingrediente existente. Corre en una transacción con la fila bloqueada para no
// pisar el descuento de una venta concurrente. El stock solo se escribe si viene en la entrada y el
// cambio queda en el diario como ajuste.
func (uc *IngredientUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	if err := access.Authorize(actor, access.OpEditIngredient); err != nil {
		return nil, err
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, domain.NewValidationError("stock", "el inventario no puede ser negativo")
	}
	var out *entity.Ingredient
	err := uc.txRunner.Run(ctx, func(
		ingredientRepo repository.IngredientRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		ing, err := ingredientRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ing == nil {
			return domain.ErrNotFound
		}
		if err := applyIngredientChanges(ctx, ingredientRepo, ing, in); err != nil {
			return err
		}
		now := time.Now()
		ing.UpdatedAt = now
		if err := ingredientRepo.Update(ctx, ing); err != nil {
			return err
		}
		if in.Stock != nil && *in.Stock != ing.Stock {
			before := ing.Stock
			ing.Stock = *in.Stock
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, ing.Stock); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, &entity.InventoryMovement{
				ID:           uuid.New().String(),
				IngredientID: ing.ID,
				Type:         entity.MovementTypeAdjustment,
				Delta:        ing.Stock - before,
				StockBefore:  before,
				StockAfter:   ing.Stock,
				CreatedBy:    actor.UserID,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}
		out, err = ingredientRepo.GetByID(ctx, ing.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toIngredientResponse(out), nil
}

// applyIngredientChanges copia los campos recibidos salvo el stock y valida el resultado.
func applyIngredientChanges(ctx context.Context, repo repository.IngredientRepository, ing *entity.Ingredient, in dto.UpdateIngredientRequest) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return domain.NewValidationError("name", "el nombre es requerido")
		}
		if name != ing.Name {
			other, err := repo.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != ing.ID {
				return domain.ErrDuplicate
			}
		}
		ing.Name = name
	}
	if in.Kind != nil {
		kind := entity.IngredientKind(*in.Kind)
		if !kind.Valid() {
			return domain.NewValidationError("kind", "tipo debe ser BASE o COMPLEMENT")
		}
		ing.Kind = kind
	}
	if in.Price != nil {
		ing.Price = *in.Price
	}
	if in.Calories != nil {
		ing.Calories = *in.Calories
	}
	if in.Vegetarian != nil {
		ing.Vegetarian = *in.Vegetarian
	}
	if in.Healthy != nil {
		ing.Healthy = *in.Healthy
	}
	if in.Flavor != nil {
		ing.Flavor = normalizeOptional(in.Flavor)
	}
	// El stock actual puede ser negativo tras una venta; no se valida aquí.
	return validateIngredientNumbers(ing.Price, ing.Calories, 0)
}

// Delete elimina un ingrediente. Se rechaza si algún producto lo usa (dejaría una composición incompleta).
func (uc *IngredientUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.Authorize(actor, access.OpDeleteIngredient); err != nil {
		return err
	}
	ing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ing == nil {
		return domain.ErrNotFound
	}
	used, err := uc.productRepo.CountByIngredient(ctx, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return domain.NewValidationError("id", "el ingrediente forma parte de uno o más productos")
	}
	return uc.repo.Delete(ctx, id)
}

// Movements devuelve el diario de stock del ingrediente (más recientes primero).
func (uc *IngredientUseCase) Movements(ctx context.Context, actor access.Actor, id string, limit int) ([]dto.InventoryMovementResponse, error) {
	if err := access.Authorize(actor, access.OpListIngredients); err != nil {
		return nil, err
	}
	ing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ing == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 || limit > defaultMovementsLimit {
		limit = defaultMovementsLimit
	}
	list, err := uc.movRepo.ListByIngredient(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.InventoryMovementResponse{
			ID:           m.ID,
			IngredientID: m.IngredientID,
			Type:         m.Type,
			Delta:        m.Delta,
			StockBefore:  m.StockBefore,
			StockAfter:   m.StockAfter,
			Reference:    m.Reference,
			CreatedBy:    m.CreatedBy,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out, nil
}

func validateIngredientNumbers(price decimal.Decimal, calories, stock int) error {
	if price.IsNegative() {
		return domain.NewValidationError("price", "el precio no puede ser negativo")
	}
	if calories < 0 {
		return domain.NewValidationError("calories", "las calorías no pueden ser negativas")
	}
	if stock < 0 {
		return domain.NewValidationError("stock", "el inventario no puede ser negativo")
	}
	return nil
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toIngredientResponse(ing *entity.Ingredient) *dto.IngredientResponse {
	if ing == nil {
		return nil
	}
	return &dto.IngredientResponse{
		ID:         ing.ID,
		Name:       ing.Name,
		Kind:       string(ing.Kind),
		Price:      ing.Price,
		Calories:   ing.Calories,
		Stock:      ing.Stock,
		Vegetarian: ing.Vegetarian,
		Healthy:    ing.Healthy,
		Flavor:     ing.Flavor,
		CreatedAt:  ing.CreatedAt,
		UpdatedAt:  ing.UpdatedAt,
	}
}
