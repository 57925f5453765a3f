package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/sales"
)

// SaleHandler endpoints de ventas: registro, listado, compras propias, comprobante y exportación.
type SaleHandler struct {
	record  *sales.RecordSaleUseCase
	query   *sales.QueryUseCase
	receipt *sales.ReceiptUseCase
	export  *sales.ExportUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(
	record *sales.RecordSaleUseCase,
	query *sales.QueryUseCase,
	receipt *sales.ReceiptUseCase,
	export *sales.ExportUseCase,
) *SaleHandler {
	return &SaleHandler{record: record, query: query, receipt: receipt, export: export}
}

// Record godoc
// @Summary      Registrar venta
// @Description  Descuenta el stock de los 3 ingredientes del producto en la misma transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordSaleRequest  true  "Producto y cantidad (por defecto 1)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordSaleRequest
	if e := parseBody(c, &in); e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.record.RecordSale(c.Context(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Description  Últimas ventas con ingresos totales, de hoy y número de ventas de hoy. Solo administrador.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        user_id  query  string  false  "Filtrar por comprador"
// @Param        from     query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to       query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit    query  int     false  "Máximo de ventas (por defecto 50)"
// @Success      200  {object}  dto.SaleListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	q, e := parseSaleQuery(c)
	if e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	out, err := h.query.List(c.Context(), GetActor(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// MyPurchases godoc
// @Summary      Mis compras
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MyPurchasesResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me/purchases [get]
func (h *SaleHandler) MyPurchases(c *fiber.Ctx) error {
	out, err := h.query.MyPurchases(c.Context(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de una venta
// @Description  Solo el comprador o un administrador.
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/receipt.pdf [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id de venta inválido"})
	}
	pdf, filename, err := h.receipt.DownloadReceipt(c.Context(), GetActor(c), int64(id))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// Export godoc
// @Summary      Exportar ventas en XML
// @Description  Documento XML con las ventas del rango y sus totales. Solo administrador.
// @Tags         sales
// @Security     Bearer
// @Produce      application/xml
// @Param        user_id  query  string  false  "Filtrar por comprador"
// @Param        from     query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to       query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/sales/export.xml [get]
func (h *SaleHandler) Export(c *fiber.Ctx) error {
	q, e := parseSaleQuery(c)
	if e != nil {
		return c.Status(fiber.StatusBadRequest).JSON(e)
	}
	doc, filename, err := h.export.Export(c.Context(), GetActor(c), q)
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	return c.Send(doc)
}

func parseSaleQuery(c *fiber.Ctx) (dto.SaleListQuery, *dto.ErrorResponse) {
	q := dto.SaleListQuery{
		UserID: c.Query("user_id"),
		Limit:  c.QueryInt("limit", 0),
	}
	if s := c.Query("from"); s != "" {
		t, ok := parseDate(s, false)
		if !ok {
			return q, &dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "from: formato de fecha inválido"}
		}
		q.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, ok := parseDate(s, true)
		if !ok {
			return q, &dto.ErrorResponse{Code: "INVALID_PARAMS", Message: "to: formato de fecha inválido"}
		}
		q.To = &t
	}
	return q, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD. Con solo fecha y endOfDay devuelve el último instante del día
// (el filtro hasta es inclusivo).
func parseDate(s string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true
}
