package repository

import (
	"context"
	"time"

	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, id string) error
	// GetByID devuelve la factura con proveedor y documentos; (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	// List ordena por created_at DESC e incluye proveedor y documentos.
	List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error)
	Count(ctx context.Context) (int, error)
	// LastNumberWithPrefix devuelve el mayor invoice_number que empieza por prefix, o "".
	LastNumberWithPrefix(ctx context.Context, prefix string) (string, error)
	// ListForMonth devuelve las facturas con invoice_date en [start, end) ordenadas por fecha
	// y, dentro de cada una, los documentos en orden de creación.
	ListForMonth(ctx context.Context, start, end time.Time) ([]*entity.MonthInvoice, error)
}
