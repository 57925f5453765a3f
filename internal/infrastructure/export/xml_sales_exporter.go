// Package export serializa reportes de ventas.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/heladeria-api/internal/application/sales"
)

var _ sales.SalesExporter = (*XMLSalesExporter)(nil)

// XMLSalesExporter genera el documento:
//
//	<SalesReport generatedAt="..." from="..." to="...">
//	  <Summary count="2" units="3" revenue="16.50"/>
//	  <Sale id="1" createdAt="...">
//	    <Product id="...">Copa</Product>
//	    <User id="...">ana</User>
//	    <Quantity>2</Quantity>
//	    <Total>11.00</Total>
//	  </Sale>
//	</SalesReport>
type XMLSalesExporter struct{}

// NewXMLSalesExporter crea el exportador.
func NewXMLSalesExporter() *XMLSalesExporter { return &XMLSalesExporter{} }

// ExportSales devuelve el XML indentado con declaración UTF-8.
func (e *XMLSalesExporter) ExportSales(_ context.Context, report sales.SalesReport) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("SalesReport")
	root.CreateAttr("generatedAt", report.GeneratedAt.UTC().Format(time.RFC3339))
	if report.From != nil {
		root.CreateAttr("from", report.From.UTC().Format(time.RFC3339))
	}
	if report.To != nil {
		root.CreateAttr("to", report.To.UTC().Format(time.RFC3339))
	}

	summary := root.CreateElement("Summary")
	summary.CreateAttr("count", strconv.Itoa(report.Summary.Count))
	summary.CreateAttr("units", strconv.Itoa(report.Summary.Units))
	summary.CreateAttr("revenue", report.Summary.Revenue.StringFixed(2))

	for _, s := range report.Sales {
		el := root.CreateElement("Sale")
		el.CreateAttr("id", strconv.FormatInt(s.ID, 10))
		el.CreateAttr("createdAt", s.CreatedAt.UTC().Format(time.RFC3339))

		product := el.CreateElement("Product")
		product.CreateAttr("id", s.ProductID)
		product.SetText(s.ProductName)

		user := el.CreateElement("User")
		user.CreateAttr("id", s.UserID)
		user.SetText(s.Username)

		el.CreateElement("Quantity").SetText(strconv.Itoa(s.Quantity))
		el.CreateElement("Total").SetText(s.Total.StringFixed(2))
	}

	doc.Indent(2)
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("export: serializar XML: %w", err)
	}
	return out.Bytes(), nil
}
