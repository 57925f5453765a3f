package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO resumen según el rol. Los campos de ventas solo se informan al administrador.
type DashboardSummaryDTO struct {
	Username         string           `json:"username"`
	Role             string           `json:"role"`
	TotalProducts    int              `json:"total_products"`
	TotalIngredients int              `json:"total_ingredients"`
	TodaySales       *decimal.Decimal `json:"today_sales,omitempty"`
	TodaySalesCount  *int             `json:"today_sales_count,omitempty"`
	DateLabel        string           `json:"date_label"`
}
