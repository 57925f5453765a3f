package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

const (
	defaultSaleListLimit = 50
	maxSaleListLimit     = 500
)

// QueryUseCase consultas de ventas: listado con estadísticas (administrador) y compras propias.
type QueryUseCase struct {
	saleRepo repository.SaleRepository
	now      func() time.Time
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(saleRepo repository.SaleRepository) *QueryUseCase {
	return &QueryUseCase{saleRepo: saleRepo, now: time.Now}
}

// List devuelve las últimas ventas (50 por defecto) junto con los ingresos totales,
// los de hoy y el número de ventas de hoy.
func (uc *QueryUseCase) List(ctx context.Context, actor access.Actor, q dto.SaleListQuery) (*dto.SaleListResponse, error) {
	if err := access.Authorize(actor, access.OpListSales); err != nil {
		return nil, err
	}
	filter := repository.SaleFilter{UserID: q.UserID, From: q.From, To: q.To, Limit: clampLimit(q.Limit)}

	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ventas: listar: %w", err)
	}
	total, err := uc.saleRepo.Summarize(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ventas: totales: %w", err)
	}
	todayStart, todayEnd := dayRange(uc.now())
	today, err := uc.saleRepo.Summarize(ctx, repository.SaleFilter{From: &todayStart, To: &todayEnd})
	if err != nil {
		return nil, fmt.Errorf("ventas: totales de hoy: %w", err)
	}

	return &dto.SaleListResponse{
		Items:        toSaleResponses(list),
		TotalRevenue: total.Revenue,
		TodayRevenue: today.Revenue,
		TodayCount:   today.Count,
	}, nil
}

// MyPurchases devuelve todas las compras del actor y el total gastado.
func (uc *QueryUseCase) MyPurchases(ctx context.Context, actor access.Actor) (*dto.MyPurchasesResponse, error) {
	if err := access.Authorize(actor, access.OpMyPurchases); err != nil {
		return nil, err
	}
	filter := repository.SaleFilter{UserID: actor.UserID}
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ventas: mis compras: %w", err)
	}
	summary, err := uc.saleRepo.Summarize(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ventas: total gastado: %w", err)
	}
	return &dto.MyPurchasesResponse{Items: toSaleResponses(list), TotalSpent: summary.Revenue}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSaleListLimit
	}
	if limit > maxSaleListLimit {
		return maxSaleListLimit
	}
	return limit
}

// dayRange devuelve el inicio y el último instante del día de t.
func dayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

func toSaleResponses(list []entity.SaleWithDetails) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(list))
	for i := range list {
		out = append(out, toSaleResponse(&list[i]))
	}
	return out
}

func toSaleResponse(s *entity.SaleWithDetails) dto.SaleResponse {
	return dto.SaleResponse{
		ID:          s.ID,
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		UserID:      s.UserID,
		Username:    s.Username,
		Quantity:    s.Quantity,
		Total:       s.Total,
		CreatedAt:   s.CreatedAt,
	}
}
