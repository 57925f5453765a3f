package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/heladeria-api/docs"
	appanalytics "github.com/jhoicas/heladeria-api/internal/application/analytics"
	"github.com/jhoicas/heladeria-api/internal/application/auth"
	"github.com/jhoicas/heladeria-api/internal/application/inventory"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/application/sales"
	"github.com/jhoicas/heladeria-api/internal/application/usecase"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	infraexport "github.com/jhoicas/heladeria-api/internal/infrastructure/export"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/heladeria-api/internal/infrastructure/pdf"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/heladeria-api/internal/interfaces/http"
	"github.com/jhoicas/heladeria-api/pkg/config"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

// storage agrupa los repositorios del driver elegido.
type storage struct {
	ingredients repository.IngredientRepository
	products    repository.ProductRepository
	sales       repository.SaleRepository
	users       repository.UserRepository
	movements   repository.InventoryMovementRepository
	tx          ports.TxRunner
	close       func()
}

// @title                       Heladería API
// @version                     1.0
// @description                 Catálogo de ingredientes y productos, inventario y ventas de la heladería.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Bool("strict_stock", cfg.Sales.StrictStock).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	// Eventos: Kafka si hay brokers configurados; si no, se descartan.
	var publisher ports.EventPublisher = ports.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar publicador de eventos")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos activa")
	}

	policy := sales.StockPolicyLegacy
	if cfg.Sales.StrictStock {
		policy = sales.StockPolicyStrict
	}

	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	userUC := usecase.NewUserUseCase(store.users)
	productUC := usecase.NewProductUseCase(store.products, store.ingredients)
	ingredientUC := usecase.NewIngredientUseCase(store.ingredients, store.products, store.movements, store.tx)
	renewUC := inventory.NewRenewUseCase(store.tx, publisher, log)
	recordSaleUC := sales.NewRecordSaleUseCase(store.tx, publisher, policy, log)
	saleQueryUC := sales.NewQueryUseCase(store.sales)

	// PDF: comprobante de venta
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	receiptUC := sales.NewReceiptUseCase(store.sales, store.products, pdfGenerator)
	exportUC := sales.NewExportUseCase(store.sales, infraexport.NewXMLSalesExporter())
	dashboardUC := appanalytics.NewDashboardUseCase(store.products, store.ingredients, store.sales, store.users)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Heladería API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		UserUC:       userUC,
		ProductUC:    productUC,
		IngredientUC: ingredientUC,
		RenewUC:      renewUC,
		RecordSale:   recordSaleUC,
		SaleQuery:    saleQueryUC,
		SaleReceipt:  receiptUC,
		SaleExport:   exportUC,
		DashboardUC:  dashboardUC,
		JWTSecret:    cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			ingredients: s.Ingredients(),
			products:    s.Products(),
			sales:       s.Sales(),
			users:       s.Users(),
			movements:   s.Movements(),
			tx:          s,
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migración: %w", err)
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		ingredients: postgres.NewIngredientRepository(pool),
		products:    postgres.NewProductRepository(pool),
		sales:       postgres.NewSaleRepository(pool),
		users:       postgres.NewUserRepository(pool),
		movements:   postgres.NewInventoryMovementRepository(pool),
		tx:          postgres.NewTxRunner(pool),
		close:       pool.Close,
	}, nil
}
