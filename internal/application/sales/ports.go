package sales

import (
	"context"
	"time"

	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// ReceiptGenerator genera el comprobante (PDF) de una venta.
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, sale *entity.SaleWithDetails, product *entity.Product) ([]byte, error)
}

// SalesReport datos de entrada del documento de exportación.
type SalesReport struct {
	GeneratedAt time.Time
	From        *time.Time
	To          *time.Time
	Sales       []entity.SaleWithDetails
	Summary     repository.SalesSummary
}

// SalesExporter serializa un reporte de ventas (XML).
type SalesExporter interface {
	ExportSales(ctx context.Context, report SalesReport) ([]byte, error)
}
