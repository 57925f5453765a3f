package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/heladeria-api/internal/application/analytics"
	"github.com/jhoicas/heladeria-api/internal/application/auth"
	"github.com/jhoicas/heladeria-api/internal/application/inventory"
	"github.com/jhoicas/heladeria-api/internal/application/sales"
	"github.com/jhoicas/heladeria-api/internal/application/usecase"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	UserUC       *usecase.UserUseCase
	ProductUC    *usecase.ProductUseCase
	IngredientUC *usecase.IngredientUseCase
	RenewUC      *inventory.RenewUseCase
	RecordSale   *sales.RecordSaleUseCase
	SaleQuery    *sales.QueryUseCase
	SaleReceipt  *sales.ReceiptUseCase
	SaleExport   *sales.ExportUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	JWTSecret    string
}

var (
	roleAdmin    = string(entity.RoleAdministrator)
	roleEmployee = string(entity.RoleEmployee)
	roleClient   = string(entity.RoleClient)
)

// Router registra las rutas de la API. RequireRole filtra temprano; cada caso de uso
// vuelve a evaluar la política de acceso.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	authMW := AuthMiddleware(deps.JWTSecret)
	staff := RequireRole(roleAdmin, roleEmployee)
	anyRole := RequireRole(roleAdmin, roleEmployee, roleClient)
	adminOnly := RequireRole(roleAdmin)

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	api.Post("/users", authMW, adminOnly, authHandler.CreateUser)
	api.Get("/me", authMW, authHandler.Me)

	// Products: lectura pública, escritura para personal
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/most-profitable", authMW, adminOnly, productHandler.MostProfitable)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", authMW, staff, productHandler.Create)
	products.Put("/:id", authMW, staff, productHandler.Update)
	products.Delete("/:id", authMW, staff, productHandler.Delete)

	// Ingredients e inventario (personal)
	ingredientHandler := NewIngredientHandler(deps.IngredientUC, deps.RenewUC)
	ingredients := api.Group("/ingredients", authMW, staff)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Post("/renew", ingredientHandler.Renew)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Put("/:id", ingredientHandler.Update)
	ingredients.Delete("/:id", ingredientHandler.Delete)
	ingredients.Get("/:id/movements", ingredientHandler.Movements)

	// Sales
	saleHandler := NewSaleHandler(deps.RecordSale, deps.SaleQuery, deps.SaleReceipt, deps.SaleExport)
	salesGroup := api.Group("/sales", authMW)
	salesGroup.Post("/", anyRole, saleHandler.Record)
	salesGroup.Get("/", adminOnly, saleHandler.List)
	salesGroup.Get("/export.xml", adminOnly, saleHandler.Export)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.Receipt)
	api.Get("/me/purchases", authMW, saleHandler.MyPurchases)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	api.Get("/dashboard", authMW, dashboardHandler.GetSummary)
}
