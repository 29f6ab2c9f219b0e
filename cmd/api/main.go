package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/application/sales"
	"github.com/jhoicas/fulfillment-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/fulfillment-ledger/internal/interfaces/http"
	"github.com/jhoicas/fulfillment-ledger/pkg/config"
	"github.com/jhoicas/fulfillment-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	locations := inventory.ParseLocations(cfg.Inventory.Locations)
	if cfg.Inventory.DefaultLocation != "" && !locations.Contains(cfg.Inventory.DefaultLocation) {
		log.Fatal().Str("location", cfg.Inventory.DefaultLocation).Msg("INVENTORY_DEFAULT_LOCATION no está en INVENTORY_LOCATIONS")
	}

	lots := inventory.NewLotTracker(txRunner)
	alerts := inventory.NewAlertEngine(txRunner, log.Component("alerts"))
	ledger := inventory.NewStockLedger(txRunner, lots, alerts, locations, log.Component("ledger"))
	transfers := inventory.NewTransferEngine(txRunner, locations, log.Component("transfers"))
	stats := inventory.NewStockStatistics(txRunner)

	orders := sales.NewOrderLifecycle(
		txRunner, ledger,
		sales.NewReceivableGenerator(), sales.NewDocumentGenerator(),
		log.Component("orders"),
	)
	orders.DefaultLocation = cfg.Inventory.DefaultLocation

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Fulfillment Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledger,
		Transfers: transfers,
		Lots:      lots,
		Alerts:    alerts,
		Stats:     stats,
		Orders:    orders,
		Locations: locations,
		JWTSecret: cfg.JWT.Secret,
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
