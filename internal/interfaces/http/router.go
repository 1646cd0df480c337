package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// RouterDeps handlers ya construidos y el secreto JWT.
type RouterDeps struct {
	Auth      *AuthHandler
	Invoices  *InvoiceHandler
	Suppliers *SupplierHandler
	Documents *DocumentHandler
	Exports   *ExportHandler
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	api.Post("/auth/login", deps.Auth.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", deps.Auth.Me)

	protected.Get("/suppliers", deps.Suppliers.List)

	// Invoices. Las rutas fijas van antes de /:id.
	invoices := protected.Group("/invoices")
	invoices.Get("/", deps.Invoices.List)
	invoices.Get("/next-number", deps.Invoices.NextNumber)
	invoices.Get("/month/:monthKey/documents.zip", deps.Exports.Download)
	invoices.Post("/month/:monthKey/documents.zip/email", deps.Exports.EmailLink)
	invoices.Post("/", deps.Invoices.Create)
	invoices.Get("/:id/documents", deps.Invoices.Documents)
	invoices.Patch("/:id", deps.Invoices.Update)
	invoices.Delete("/:id", RequireRole(entity.RoleAdmin), deps.Invoices.Delete)

	// Documents
	protected.Get("/documents/:id/download-url", deps.Documents.DownloadURL)
	protected.Post("/uploads/presign", deps.Documents.PresignUpload)

	if deps.Log != nil {
		deps.Log.Debug().Int("routes", len(app.GetRoutes(true))).Msg("http: rutas registradas")
	}
}
