package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de una venta. Solo el comprador o un administrador
// pueden descargarlo.
type ReceiptUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	generator   ReceiptGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, generator ReceiptGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, productRepo: productRepo, generator: generator}
}

// DownloadReceipt devuelve (pdfBytes, filename).
//
// Retorna:
//   - domain.ErrNotFound  si la venta no existe.
//   - domain.ErrForbidden si la venta es de otro usuario y el actor no es administrador.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, actor access.Actor, saleID int64) ([]byte, string, error) {
	if err := access.Authorize(actor, access.OpViewReceipt); err != nil {
		return nil, "", err
	}
	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	if sale.UserID != actor.UserID && !access.IsAdmin(actor) {
		return nil, "", domain.ErrForbidden
	}
	product, err := uc.productRepo.GetByID(ctx, sale.ProductID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener producto: %w", err)
	}
	if product == nil {
		return nil, "", domain.ErrNotFound
	}
	pdfBytes, err := uc.generator.GenerateSaleReceipt(ctx, sale, product)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("venta_%06d.pdf", sale.ID), nil
}
