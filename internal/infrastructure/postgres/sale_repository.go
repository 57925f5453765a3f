package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
// No expone UPDATE: una venta no cambia después del alta.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la venta y asigna el ID generado (BIGSERIAL).
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	query := `
		INSERT INTO sales (product_id, user_id, quantity, total, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, sale.ProductID, sale.UserID, sale.Quantity, sale.Total, sale.CreatedAt).Scan(&sale.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

const saleDetailSelect = `
	SELECT s.id, s.product_id, s.user_id, s.quantity, s.total, s.created_at, p.name, u.username
	FROM sales s
	JOIN products p ON p.id = s.product_id
	JOIN users u ON u.id = s.user_id`

// GetByID obtiene una venta con nombre de producto y de usuario. (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.SaleWithDetails, error) {
	var s entity.SaleWithDetails
	err := r.q.QueryRow(ctx, saleDetailSelect+` WHERE s.id = $1`, id).Scan(
		&s.ID, &s.ProductID, &s.UserID, &s.Quantity, &s.Total, &s.CreatedAt, &s.ProductName, &s.Username,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}

// List devuelve las ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, filter repository.SaleFilter) ([]entity.SaleWithDetails, error) {
	where, args := saleWhere(filter)
	query := saleDetailSelect + where + ` ORDER BY s.created_at DESC, s.id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	list := make([]entity.SaleWithDetails, 0)
	for rows.Next() {
		var s entity.SaleWithDetails
		if err := rows.Scan(&s.ID, &s.ProductID, &s.UserID, &s.Quantity, &s.Total, &s.CreatedAt, &s.ProductName, &s.Username); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Summarize cuenta ventas, unidades e ingresos del filtro (ignora Limit).
// COALESCE devuelve cero si no hay ventas.
func (r *SaleRepo) Summarize(ctx context.Context, filter repository.SaleFilter) (repository.SalesSummary, error) {
	where, args := saleWhere(filter)
	query := `SELECT COUNT(*), COALESCE(SUM(s.quantity), 0), COALESCE(SUM(s.total), 0) FROM sales s` + where
	var out repository.SalesSummary
	if err := r.q.QueryRow(ctx, query, args...).Scan(&out.Count, &out.Units, &out.Revenue); err != nil {
		return repository.SalesSummary{}, fmt.Errorf("summarize sales: %w", err)
	}
	return out, nil
}

func saleWhere(filter repository.SaleFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("s.user_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conds = append(conds, fmt.Sprintf("s.created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conds = append(conds, fmt.Sprintf("s.created_at <= $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
