package export_test

import (
	"context"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/application/sales"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/export"
)

func TestExportSales_EstructuraDelDocumento(t *testing.T) {
	at := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
	report := sales.SalesReport{
		GeneratedAt: at,
		Sales: []entity.SaleWithDetails{
			{
				Sale:        entity.Sale{ID: 1, ProductID: "p1", UserID: "u1", Quantity: 2, Total: decimal.RequireFromString("11"), CreatedAt: at},
				ProductName: "Copa <Especial>",
				Username:    "ana",
			},
		},
		Summary: repository.SalesSummary{Count: 1, Units: 2, Revenue: decimal.RequireFromString("11")},
	}

	out, err := export.NewXMLSalesExporter().ExportSales(context.Background(), report)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "SalesReport", root.Tag)
	assert.Equal(t, "2026-10-15T10:30:00Z", root.SelectAttrValue("generatedAt", ""))
	assert.Nil(t, root.SelectAttr("from"))

	summary := root.SelectElement("Summary")
	require.NotNil(t, summary)
	assert.Equal(t, "1", summary.SelectAttrValue("count", ""))
	assert.Equal(t, "11.00", summary.SelectAttrValue("revenue", ""))

	saleEls := root.SelectElements("Sale")
	require.Len(t, saleEls, 1)
	assert.Equal(t, "1", saleEls[0].SelectAttrValue("id", ""))
	assert.Equal(t, "Copa <Especial>", saleEls[0].SelectElement("Product").Text())
	assert.Equal(t, "2", saleEls[0].SelectElement("Quantity").Text())
	assert.Equal(t, "11.00", saleEls[0].SelectElement("Total").Text())
}

func TestExportSales_SinVentas(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := export.NewXMLSalesExporter().ExportSales(context.Background(), sales.SalesReport{
		GeneratedAt: time.Now(),
		From:        &from,
	})
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	assert.Empty(t, doc.Root().SelectElements("Sale"))
	assert.Equal(t, "2026-01-01T00:00:00Z", doc.Root().SelectAttrValue("from", ""))
	assert.Equal(t, "0.00", doc.Root().SelectElement("Summary").SelectAttrValue("revenue", ""))
}
