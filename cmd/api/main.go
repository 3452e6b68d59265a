package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/welook-io/mercure-sub001/internal/application/billing"
	domafip "github.com/welook-io/mercure-sub001/internal/domain/afip"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
	"github.com/welook-io/mercure-sub001/internal/infrastructure/postgres"
	httpRouter "github.com/welook-io/mercure-sub001/internal/interfaces/http"
	"github.com/welook-io/mercure-sub001/pkg/config"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("afip_env", cfg.AFIP.Environment).
		Msg("iniciando servicio de facturación")

	ctx := context.Background()

	// Almacén de la identidad firmante: tabla mercure_afip_config en Postgres
	// (certificados subidos desde el back office) o variables de entorno.
	var store domafip.CredentialStore
	if cfg.AFIP.Source == "postgres" {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		store = postgres.NewAfipConfigRepository(pool)
	} else {
		store = infraafip.NewEnvCredentialStore(cfg.AFIP)
	}

	wsaaClient := infraafip.NewWSAAClient(store, log)
	wsfeClient := infraafip.NewWSFEClient(store, wsaaClient, log)
	facturacionUC := billing.NewFacturacionUseCase(wsfeClient, wsaaClient, store, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 90, // la autorización AFIP puede tardar
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Facturacion: facturacionUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
}
