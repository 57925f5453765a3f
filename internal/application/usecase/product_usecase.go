package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/catalog"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// ProductUseCase casos de uso para productos. Costo, calorías, rentabilidad y disponibilidad
// se derivan de los ingredientes en cada lectura; nunca se guardan.
type ProductUseCase struct {
	repo           repository.ProductRepository
	ingredientRepo repository.IngredientRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, ingredientRepo repository.IngredientRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, ingredientRepo: ingredientRepo}
}

// List lista los productos (público).
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items}, nil
}

// GetByID obtiene un producto con sus valores derivados (público). ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(p), nil
}

// Create crea un producto con exactamente 3 ingredientes distintos.
func (uc *ProductUseCase) Create(ctx context.Context, actor access.Actor, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Authorize(actor, access.OpCreateProduct); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "el nombre es requerido")
	}
	kind := entity.ProductKind(in.Kind)
	if !kind.Valid() {
		return nil, domain.NewValidationError("kind", "tipo debe ser CUP o SHAKE")
	}
	if err := validateProductNumbers(in.PublicPrice, in.VolumeOz); err != nil {
		return nil, err
	}
	ingredients, err := uc.resolveComposition(ctx, in.IngredientIDs)
	if err != nil {
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
	p := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		PublicPrice: in.PublicPrice,
		Kind:        kind,
		CupStyle:    normalizeOptional(in.CupStyle),
		VolumeOz:    in.VolumeOz,
		Ingredients: ingredients,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Update edita un producto. Si llegan IngredientIDs se reemplaza la composición completa.
func (uc *ProductUseCase) Update(ctx context.Context, actor access.Actor, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Authorize(actor, access.OpEditProduct); err != nil {
		return nil, err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "el nombre es requerido")
		}
		if name != p.Name {
			other, err := uc.repo.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != p.ID {
				return nil, domain.ErrDuplicate
			}
		}
		p.Name = name
	}
	if in.Kind != nil {
		kind := entity.ProductKind(*in.Kind)
		if !kind.Valid() {
			return nil, domain.NewValidationError("kind", "tipo debe ser CUP o SHAKE")
		}
		p.Kind = kind
	}
	if in.PublicPrice != nil {
		p.PublicPrice = *in.PublicPrice
	}
	if in.CupStyle != nil {
		p.CupStyle = normalizeOptional(in.CupStyle)
	}
	if in.VolumeOz != nil {
		p.VolumeOz = in.VolumeOz
	}
	if err := validateProductNumbers(p.PublicPrice, p.VolumeOz); err != nil {
		return nil, err
	}
	if in.IngredientIDs != nil {
		ingredients, err := uc.resolveComposition(ctx, in.IngredientIDs)
		if err != nil {
			return nil, err
		}
		p.Ingredients = ingredients
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// Delete elimina un producto. Las ventas que lo referencian se eliminan en cascada.
func (uc *ProductUseCase) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := access.Authorize(actor, access.OpDeleteProduct); err != nil {
		return err
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// MostProfitable ordena los productos por rentabilidad descendente (solo administrador).
// ErrNotFound si no hay productos registrados.
func (uc *ProductUseCase) MostProfitable(ctx context.Context, actor access.Actor) (*dto.ProfitabilityReport, error) {
	if err := access.Authorize(actor, access.OpMostProfitable); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrNotFound
	}
	ranking := make([]dto.ProductProfitability, 0, len(list))
	for _, p := range list {
		ranking = append(ranking, dto.ProductProfitability{
			ProductID:     p.ID,
			Name:          p.Name,
			PublicPrice:   p.PublicPrice,
			Cost:          catalog.Cost(p),
			Profitability: catalog.Profitability(p),
		})
	}
	// Orden estable: ante empate gana el primero por nombre (List ya viene ordenado).
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Profitability.GreaterThan(ranking[j].Profitability)
	})
	return &dto.ProfitabilityReport{MostProfitable: ranking[0], Ranking: ranking}, nil
}

// resolveComposition valida los IDs y carga los ingredientes en el orden recibido.
func (uc *ProductUseCase) resolveComposition(ctx context.Context, ids []string) ([]entity.Ingredient, error) {
	if err := catalog.ValidateComposition(ids); err != nil {
		return nil, err
	}
	out := make([]entity.Ingredient, 0, len(ids))
	for _, id := range ids {
		ing, err := uc.ingredientRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			return nil, domain.NewValidationError("ingredient_ids", "el ingrediente no existe: "+id)
		}
		out = append(out, *ing)
	}
	return out, nil
}

func validateProductNumbers(price decimal.Decimal, volumeOz *int) error {
	if price.IsNegative() {
		return domain.NewValidationError("public_price", "el precio no puede ser negativo")
	}
	if volumeOz != nil && *volumeOz < 0 {
		return domain.NewValidationError("volume_oz", "el volumen no puede ser negativo")
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	ingredients := make([]dto.ProductIngredient, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		ingredients = append(ingredients, dto.ProductIngredient{
			ID:       ing.ID,
			Name:     ing.Name,
			Kind:     string(ing.Kind),
			Price:    ing.Price,
			Calories: ing.Calories,
			Stock:    ing.Stock,
		})
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Kind:          string(p.Kind),
		PublicPrice:   p.PublicPrice,
		CupStyle:      p.CupStyle,
		VolumeOz:      p.VolumeOz,
		Ingredients:   ingredients,
		Cost:          catalog.Cost(p),
		Calories:      catalog.Calories(p),
		Profitability: catalog.Profitability(p),
		Available:     catalog.IsAvailable(p),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
