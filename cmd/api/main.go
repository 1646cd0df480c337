package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/factures-api/docs"
	"github.com/jhoicas/factures-api/internal/application/auth"
	"github.com/jhoicas/factures-api/internal/application/billing"
	"github.com/jhoicas/factures-api/internal/application/export"
	"github.com/jhoicas/factures-api/internal/application/usecase"
	"github.com/jhoicas/factures-api/internal/infrastructure/mail"
	"github.com/jhoicas/factures-api/internal/infrastructure/postgres"
	"github.com/jhoicas/factures-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/factures-api/internal/interfaces/http"
	"github.com/jhoicas/factures-api/pkg/config"
	"github.com/jhoicas/factures-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB, log); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	store, err := storage.NewS3Storage(ctx, cfg.S3, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento S3")
	}
	mailer, err := mail.NewSMTPMailer(cfg.SMTP, log)
	if err != nil {
		log.Fatal().Err(err).Msg("transporte SMTP")
	}

	userRepo := postgres.NewUserRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(userRepo)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo)
	invoiceUC := billing.NewInvoiceUseCase(txRunner, invoiceRepo, documentRepo)
	documentUC := usecase.NewDocumentUseCase(documentRepo, store)
	uploadUC := usecase.NewUploadUseCase(store)
	exporter := export.NewExporter(invoiceRepo, store, store, mailer, cfg.Export, log)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		// La descarga del ZIP mensual se emite dentro de esta ventana.
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "Content-Disposition",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Factures API",
	}))

	health := func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	}
	app.Get("/health", health)
	app.Get("/api/health", health)

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:      httpRouter.NewAuthHandler(authUC, userUC, log),
		Invoices:  httpRouter.NewInvoiceHandler(invoiceUC, log),
		Suppliers: httpRouter.NewSupplierHandler(supplierUC, log),
		Documents: httpRouter.NewDocumentHandler(documentUC, uploadUC, log),
		Exports:   httpRouter.NewExportHandler(exporter, log),
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
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
