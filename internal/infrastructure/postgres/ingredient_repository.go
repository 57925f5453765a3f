package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

const ingredientColumns = `id, name, price, calories, stock, vegetarian, healthy, kind, flavor, created_at, updated_at`

// IngredientRepo implementación del puerto IngredientRepository sobre PostgreSQL (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

// Create persiste un nuevo ingrediente. Nombre repetido -> ErrDuplicate.
func (r *IngredientRepo) Create(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		ing.ID, ing.Name, ing.Price, ing.Calories, ing.Stock, ing.Vegetarian, ing.Healthy,
		string(ing.Kind), ing.Flavor, ing.CreatedAt, ing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ingredient: %w", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por ID. (nil, nil) si no existe.
func (r *IngredientRepo) GetByID(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)
}

// GetByName obtiene un ingrediente por nombre exacto.
func (r *IngredientRepo) GetByName(ctx context.Context, name string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE name = $1`, name)
}

// GetForUpdate obtiene el ingrediente bloqueando la fila hasta el fin de la transacción.
// Solo tiene efecto si el repositorio está atado a una tx.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.getOne(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1 FOR UPDATE`, id)
}

func (r *IngredientRepo) getOne(ctx context.Context, query string, arg any) (*entity.Ingredient, error) {
	ing, err := scanIngredient(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

// Update actualiza los campos editables. El stock no se toca: solo cambia con UpdateStock.
func (r *IngredientRepo) Update(ctx context.Context, ing *entity.Ingredient) error {
	query := `
		UPDATE ingredients SET name = $2, price = $3, calories = $4, vegetarian = $5,
			healthy = $6, kind = $7, flavor = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		ing.ID, ing.Name, ing.Price, ing.Calories, ing.Vegetarian, ing.Healthy,
		string(ing.Kind), ing.Flavor, ing.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock (ventas, renovación y ajustes, dentro de la tx).
func (r *IngredientRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE ingredients SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update ingredient stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista los ingredientes ordenados por nombre.
func (r *IngredientRepo) List(ctx context.Context) ([]*entity.Ingredient, error) {
	rows, err := r.q.Query(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()
	var list []*entity.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		list = append(list, ing)
	}
	return list, rows.Err()
}

// Delete elimina un ingrediente. Si algún producto lo usa la FK (RESTRICT) lo impide.
func (r *IngredientRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM ingredients WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("id", "el ingrediente está en uso por algún producto")
		}
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete ingredient: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count número total de ingredientes.
func (r *IngredientRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count ingredients: %w", err)
	}
	return n, nil
}

func scanIngredient(row pgx.Row) (*entity.Ingredient, error) {
	var ing entity.Ingredient
	var kind string
	if err := row.Scan(
		&ing.ID, &ing.Name, &ing.Price, &ing.Calories, &ing.Stock, &ing.Vegetarian, &ing.Healthy,
		&kind, &ing.Flavor, &ing.CreatedAt, &ing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ing.Kind = entity.IngredientKind(kind)
	return &ing, nil
}
