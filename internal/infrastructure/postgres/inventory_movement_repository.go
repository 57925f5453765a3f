package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, ingredient_id, type, delta, stock_before, stock_after, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.IngredientID, m.Type, m.Delta, m.StockBefore, m.StockAfter, m.Reference, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByIngredient últimos movimientos del ingrediente, más recientes primero.
func (r *InventoryMovementRepo) ListByIngredient(ctx context.Context, ingredientID string, limit int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, ingredient_id, type, delta, stock_before, stock_after, reference, created_by, created_at
		FROM inventory_movements WHERE ingredient_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, ingredientID, limit)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.IngredientID, &m.Type, &m.Delta, &m.StockBefore, &m.StockAfter,
			&m.Reference, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
