package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// ExportUseCase exporta las ventas de un rango de fechas como documento XML (administrador).
type ExportUseCase struct {
	saleRepo repository.SaleRepository
	exporter SalesExporter
	now      func() time.Time
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(saleRepo repository.SaleRepository, exporter SalesExporter) *ExportUseCase {
	return &ExportUseCase{saleRepo: saleRepo, exporter: exporter, now: time.Now}
}

// Export devuelve (xmlBytes, filename). Sin límite de filas: el rango acota el volumen.
func (uc *ExportUseCase) Export(ctx context.Context, actor access.Actor, q dto.SaleListQuery) ([]byte, string, error) {
	if err := access.Authorize(actor, access.OpExportSales); err != nil {
		return nil, "", err
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, "", domain.NewValidationError("to", "la fecha final es anterior a la inicial")
	}
	filter := repository.SaleFilter{UserID: q.UserID, From: q.From, To: q.To}
	list, err := uc.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("exportar: listar ventas: %w", err)
	}
	summary, err := uc.saleRepo.Summarize(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("exportar: totales: %w", err)
	}
	now := uc.now()
	out, err := uc.exporter.ExportSales(ctx, SalesReport{
		GeneratedAt: now,
		From:        q.From,
		To:          q.To,
		Sales:       list,
		Summary:     summary,
	})
	if err != nil {
		return nil, "", fmt.Errorf("exportar: %w", err)
	}
	return out, "ventas_" + now.Format("20060102") + ".xml", nil
}
