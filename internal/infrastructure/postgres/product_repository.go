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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, public_price, kind, cup_style, volume_oz, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
// La composición vive en product_ingredients; position conserva el orden de inserción.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste el producto y sus 3 filas de composición de forma atómica.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			INSERT INTO products (` + productColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.Exec(ctx, query,
			p.ID, p.Name, p.PublicPrice, string(p.Kind), p.CupStyle, p.VolumeOz, p.CreatedAt, p.UpdatedAt,
		); err != nil {
			return err
		}
		return insertComposition(ctx, tx, p)
	})
	if err != nil {
		return mapProductWriteError("insert product", err)
	}
	return nil
}

// Update actualiza el producto y reemplaza su composición completa.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	err := pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			UPDATE products SET name = $2, public_price = $3, kind = $4, cup_style = $5, volume_oz = $6, updated_at = $7
			WHERE id = $1`
		cmd, err := tx.Exec(ctx, query,
			p.ID, p.Name, p.PublicPrice, string(p.Kind), p.CupStyle, p.VolumeOz, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM product_ingredients WHERE product_id = $1`, p.ID); err != nil {
			return err
		}
		return insertComposition(ctx, tx, p)
	})
	if err != nil {
		return mapProductWriteError("update product", err)
	}
	return nil
}

func insertComposition(ctx context.Context, tx pgx.Tx, p *entity.Product) error {
	batch := &pgx.Batch{}
	for pos, ing := range p.Ingredients {
		batch.Queue(`INSERT INTO product_ingredients (product_id, ingredient_id, position) VALUES ($1, $2, $3)`,
			p.ID, ing.ID, pos)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func mapProductWriteError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return err
	case isUniqueViolation(err) && constraintName(err) == "product_ingredients_pkey":
		return domain.NewValidationError("ingredient_ids", "un ingrediente no puede repetirse en el producto")
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.NewValidationError("ingredient_ids", "algún ingrediente no existe")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetByID obtiene un producto con su composición. (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName obtiene un producto por nombre exacto.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if err := r.loadIngredients(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// List lista los productos ordenados por nombre, con su composición.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if err := r.loadIngredients(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadIngredients carga la composición de todos los productos en una sola consulta.
func (r *ProductRepo) loadIngredients(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Product, len(products))
	ids := make([]string, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
		p.Ingredients = make([]entity.Ingredient, 0, entity.CompositionSize)
	}
	query := `
		SELECT pi.product_id, i.id, i.name, i.price, i.calories, i.stock, i.vegetarian, i.healthy,
			i.kind, i.flavor, i.created_at, i.updated_at
		FROM product_ingredients pi
		JOIN ingredients i ON i.id = pi.ingredient_id
		WHERE pi.product_id = ANY($1)
		ORDER BY pi.product_id, pi.position`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load composition: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID, kind string
		var ing entity.Ingredient
		if err := rows.Scan(&productID, &ing.ID, &ing.Name, &ing.Price, &ing.Calories, &ing.Stock,
			&ing.Vegetarian, &ing.Healthy, &kind, &ing.Flavor, &ing.CreatedAt, &ing.UpdatedAt); err != nil {
			return fmt.Errorf("scan composition: %w", err)
		}
		ing.Kind = entity.IngredientKind(kind)
		if p, ok := byID[productID]; ok {
			p.Ingredients = append(p.Ingredients, ing)
		}
	}
	return rows.Err()
}

// Delete elimina un producto. La composición y las ventas se eliminan en cascada.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count número total de productos.
func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// CountByIngredient cuántos productos incluyen el ingrediente.
func (r *ProductRepo) CountByIngredient(ctx context.Context, ingredientID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM product_ingredients WHERE ingredient_id = $1`, ingredientID).Scan(&n)
	if err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count products by ingredient: %w", err)
	}
	return n, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var kind string
	if err := row.Scan(&p.ID, &p.Name, &p.PublicPrice, &kind, &p.CupStyle, &p.VolumeOz, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Kind = entity.ProductKind(kind)
	return &p, nil
}
