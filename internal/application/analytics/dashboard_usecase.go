// Package analytics contiene el caso de uso del Dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// DashboardUseCase genera el resumen que ve cada usuario al ingresar.
// Todos ven los contadores de catálogo; solo el administrador ve las ventas del día.
type DashboardUseCase struct {
	productRepo    repository.ProductRepository
	ingredientRepo repository.IngredientRepository
	saleRepo       repository.SaleRepository
	userRepo       repository.UserRepository
	now            func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(
	productRepo repository.ProductRepository,
	ingredientRepo repository.IngredientRepository,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
) *DashboardUseCase {
	return &DashboardUseCase{
		productRepo:    productRepo,
		ingredientRepo: ingredientRepo,
		saleRepo:       saleRepo,
		userRepo:       userRepo,
		now:            time.Now,
	}
}

// GetSummary construye el DashboardSummaryDTO para el actor.
//
// Consultas en paralelo:
//  1. productRepo.Count
//  2. ingredientRepo.Count
//  3. saleRepo.Summarize(hoy), solo administrador
func (uc *DashboardUseCase) GetSummary(ctx context.Context, actor access.Actor) (*dto.DashboardSummaryDTO, error) {
	if err := access.Authorize(actor, access.OpDashboard); err != nil {
		return nil, err
	}
	user, err := uc.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	now := uc.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	type countResult struct {
		n   int
		err error
	}
	type salesResult struct {
		summary repository.SalesSummary
		err     error
	}

	productsCh := make(chan countResult, 1)
	ingredientsCh := make(chan countResult, 1)
	salesCh := make(chan salesResult, 1)

	go func() {
		n, err := uc.productRepo.Count(ctx)
		productsCh <- countResult{n, err}
	}()
	go func() {
		n, err := uc.ingredientRepo.Count(ctx)
		ingredientsCh <- countResult{n, err}
	}()
	isAdmin := access.IsAdmin(actor)
	if isAdmin {
		go func() {
			s, err := uc.saleRepo.Summarize(ctx, repository.SaleFilter{From: &todayStart, To: &todayEnd})
			salesCh <- salesResult{s, err}
		}()
	}

	products := <-productsCh
	ingredients := <-ingredientsCh
	if products.err != nil {
		return nil, fmt.Errorf("dashboard: productos: %w", products.err)
	}
	if ingredients.err != nil {
		return nil, fmt.Errorf("dashboard: ingredientes: %w", ingredients.err)
	}

	out := &dto.DashboardSummaryDTO{
		Username:         user.Username,
		Role:             string(user.Role),
		TotalProducts:    products.n,
		TotalIngredients: ingredients.n,
		DateLabel:        dayLabel(now),
	}
	if isAdmin {
		sales := <-salesCh
		if sales.err != nil {
			return nil, fmt.Errorf("dashboard: ventas de hoy: %w", sales.err)
		}
		revenue := sales.summary.Revenue.Round(2)
		count := sales.summary.Count
		out.TodaySales = &revenue
		out.TodaySalesCount = &count
	}
	return out, nil
}

// dayLabel devuelve una etiqueta legible del día, ej: "15 de Octubre 2026".
func dayLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%d de %s %d", t.Day(), months[t.Month()-1], t.Year())
}
