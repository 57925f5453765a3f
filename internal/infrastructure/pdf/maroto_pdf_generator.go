// Package pdf genera el comprobante de venta de la heladería.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Heladería        │  N° venta + fecha  │
//	│  CLIENTE: usuario                              │
//	│  ─────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | P.Unit | Total       │
//	│  COMPOSICIÓN: ingredientes del producto        │
//	│  ─────────────────────────────────────────────  │
//	│  TOTAL A PAGAR + QR de referencia              │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/heladeria-api/internal/application/sales"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

var _ sales.ReceiptGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 196, Green: 62, Blue: 122}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	shopName string
	printer  *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los montos se formatean en español (12.345,50).
func NewMarotoPDFGenerator(shopName string) *MarotoPDFGenerator {
	if shopName == "" {
		shopName = "Heladería"
	}
	return &MarotoPDFGenerator{shopName: shopName, printer: message.NewPrinter(language.Spanish)}
}

// GenerateSaleReceipt genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateSaleReceipt(
	_ context.Context,
	sale *entity.SaleWithDetails,
	product *entity.Product,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(g.shopName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.detailRow(sale, product))
	m.AddRows(compositionRow(product))

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(sale *entity.SaleWithDetails) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.shopName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 7, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(receiptNumber(sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 7, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func customerRow(sale *entity.SaleWithDetails) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(sale.Username, sale.UserID), props.Text{Size: 9, Top: 5}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 5, align.Left),
		h("P. Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *MarotoPDFGenerator) detailRow(sale *entity.SaleWithDetails, product *entity.Product) core.Row {
	kind := "Copa"
	if product.Kind == entity.ProductShake {
		kind = "Malteada"
	}
	return row.New(8).Add(
		col.New(2).Add(text.New(fmt.Sprintf("%d", sale.Quantity), props.Text{Size: 8, Align: align.Center, Top: 2})),
		col.New(5).Add(text.New(fmt.Sprintf("%s (%s)", nonEmpty(sale.ProductName, product.Name), kind),
			props.Text{Size: 8, Align: align.Left, Top: 2, Left: 1})),
		col.New(2).Add(text.New(g.money(product.PublicPrice), props.Text{Size: 8, Align: align.Right, Top: 2, Right: 1})),
		col.New(3).Add(text.New(g.money(sale.Total), props.Text{Size: 8, Align: align.Right, Top: 2, Right: 1})),
	)
}

func compositionRow(product *entity.Product) core.Row {
	names := make([]string, 0, len(product.Ingredients))
	for _, ing := range product.Ingredients {
		names = append(names, ing.Name)
	}
	return row.New(8).Add(
		col.New(2),
		col.New(10).Add(text.New("Ingredientes: "+strings.Join(names, ", "), props.Text{
			Size: 7, Color: colorGray, Top: 1, Left: 1,
		})),
	)
}

func (g *MarotoPDFGenerator) totalRow(sale *entity.SaleWithDetails) core.Row {
	return row.New(28).Add(
		col.New(4).Add(code.NewQr(receiptNumber(sale.ID), props.Rect{Percent: 90, Center: true})),
		col.New(4).Add(text.New("TOTAL A PAGAR:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 10, Right: 2,
		})),
		col.New(4).Add(text.New(g.money(sale.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 10, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separadores del idioma del printer, ej: "$12.345,50".
func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func receiptNumber(id int64) string {
	return fmt.Sprintf("V-%06d", id)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
