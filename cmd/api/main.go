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
	appanalytics "github.com/jhoicas/inventario-dashboard/internal/application/analytics"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/application/ports"
	"github.com/jhoicas/inventario-dashboard/internal/domain/repository"
	"github.com/jhoicas/inventario-dashboard/internal/infrastructure/backend"
	"github.com/jhoicas/inventario-dashboard/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/inventario-dashboard/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-dashboard/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-dashboard/internal/interfaces/http"
	"github.com/jhoicas/inventario-dashboard/pkg/config"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
)

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
		Str("backend", cfg.Backend.BaseURL).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	client, err := backend.NewClient(backend.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		ServiceToken:      cfg.Backend.ServiceToken,
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente del backend")
	}
	var storeBackend ports.StoreBackend = client

	// Redis es opcional: sin REDIS_URL o si no responde se trabaja sin caché.
	if cfg.Cache.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("caché deshabilitada")
		} else {
			defer rdb.Close()
			storeBackend = cache.NewCachedBackend(client, rdb, cfg.Cache.TTL, log)
			log.Info().Dur("ttl", cfg.Cache.TTL).Msg("caché Redis activa")
		}
	}

	// Bitácora de bulk-saves en PostgreSQL.
	var auditRepo repository.BulkSaveLogRepository
	if cfg.Audit.Enabled {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		auditRepo = postgres.NewBulkSaveLogRepository(pool)
	}

	pdfGenerator := infrapdf.NewMarotoInventoryReport(cfg.App.Name)
	inventoryUC := inventory.NewUseCase(storeBackend, auditRepo, pdfGenerator, inventory.Config{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		PageSize:          cfg.Inventory.PageSize,
		FetchLimit:        cfg.Inventory.FetchLimit,
		SessionTTL:        cfg.Session.TTL,
	}, log)
	dashboardUC := appanalytics.NewDashboardUseCase(storeBackend, inventoryUC.Sessions())

	go inventoryUC.Sessions().RunJanitor(ctx, cfg.Session.JanitorPeriod, func(n int) {
		log.Debug().Int("evicted", n).Msg("sesiones inactivas descartadas")
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Backend.Timeout + time.Second*10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Dashboard API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  cfg.App.Name,
			"sessions": inventoryUC.Sessions().Len(),
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		DashboardUC: dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
