package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factures-api/internal/domain/entity"
	apphttp "github.com/jhoicas/factures-api/internal/interfaces/http"
	"github.com/jhoicas/factures-api/pkg/logger"
)

// routerApp rutas reales con handlers sin casos de uso: sólo se ejercitan los middlewares.
func routerApp() *fiber.App {
	log := logger.Nop()
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Auth:      apphttp.NewAuthHandler(nil, nil, log),
		Invoices:  apphttp.NewInvoiceHandler(nil, log),
		Suppliers: apphttp.NewSupplierHandler(nil, log),
		Documents: apphttp.NewDocumentHandler(nil, nil, log),
		Exports:   apphttp.NewExportHandler(nil, log),
		JWTSecret: testJWTSecret,
		Log:       log,
	})
	return app
}

func TestRouter_RutasProtegidasSinToken(t *testing.T) {
	app := routerApp()
	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/api/invoices"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/invoices/month/2026-01/documents.zip"},
		{http.MethodPost, "/api/invoices/month/2026-01/documents.zip/email"},
		{http.MethodPost, "/api/uploads/presign"},
	} {
		resp, err := app.Test(httptest.NewRequest(r.method, r.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, r.path)
		resp.Body.Close()
	}
}

func TestRouter_BorrarFacturaSoloAdmin(t *testing.T) {
	app := routerApp()
	req := httptest.NewRequest(http.MethodDelete, "/api/invoices/00000000-0000-0000-0000-0000000000aa", nil)
	req.Header.Set("Authorization", tokenForRole(t, entity.RoleUser))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
