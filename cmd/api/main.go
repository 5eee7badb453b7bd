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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/taller-stock/docs"
	"github.com/jhoicas/taller-stock/internal/application/stock"
	"github.com/jhoicas/taller-stock/internal/domain/repository"
	"github.com/jhoicas/taller-stock/internal/infrastructure/audit"
	"github.com/jhoicas/taller-stock/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/taller-stock/internal/infrastructure/pdf"
	"github.com/jhoicas/taller-stock/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/taller-stock/internal/interfaces/http"
	"github.com/jhoicas/taller-stock/pkg/config"
	"github.com/jhoicas/taller-stock/pkg/logger"
	"github.com/jhoicas/taller-stock/pkg/telemetry"
)

var version = "dev"

// @title                       Taller Stock API
// @version                     1.0
// @description                 Inventario de repuestos por sucursal: saldos, libro de movimientos, compras, traslados y consumo en órdenes de trabajo.
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
		Str("storage", cfg.Storage.Driver).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar telemetría")
	}

	var (
		txRunner stock.TxRunner
		repos    stock.TxRepos
		master   repository.MasterDataRepository
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		seedDemo(store)
		txRunner, repos, master = store, store.Repos(), store.MasterData()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.Storage.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		txRunner, repos, master = postgres.NewTxRunner(pool), postgres.NewRepos(pool), postgres.NewMasterDataRepository(pool)
	}

	// Auditoría: siempre al log; además al webhook si está configurado
	sinks := audit.Multi{audit.NewLogSink(log)}
	var webhook *audit.WebhookSink
	if cfg.Audit.WebhookURL != "" {
		webhook = audit.NewWebhookSink(cfg.Audit.WebhookURL, cfg.Audit.Timeout, cfg.Audit.QueueSize, log)
		sinks = append(sinks, webhook)
	}

	adjustUC := stock.NewAdjustmentUseCase(txRunner, repos, master, sinks)
	purchaseOrderUC := stock.NewPurchaseOrderUseCase(txRunner, repos, master, sinks)
	transferUC := stock.NewTransferUseCase(txRunner, repos, master, sinks, infrapdf.NewManifestGenerator())
	consumptionUC := stock.NewConsumptionUseCase(txRunner, repos, master, sinks)
	queryUC := stock.NewQueryUseCase(txRunner, repos)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Stock API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Adjustments:    adjustUC,
		PurchaseOrders: purchaseOrderUC,
		Transfers:      transferUC,
		Consumption:    consumptionUC,
		Queries:        queryUC,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
		Log:            log,
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
	if webhook != nil {
		if err := webhook.Close(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("vaciado de la cola de auditoría")
		}
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de telemetría")
	}

	log.Info().Msg("aplicación detenida")
}
