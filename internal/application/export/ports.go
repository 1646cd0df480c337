package export

import (
	"context"
	"time"

	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// MonthLocator resuelve las facturas (con proveedor y documentos) de un intervalo
// [start, end), ordenadas por fecha de factura ascendente.
type MonthLocator interface {
	ListForMonth(ctx context.Context, start, end time.Time) ([]*entity.MonthInvoice, error)
}

// ProgressFunc observador de progreso: bytes del ZIP emitidos hasta el momento.
type ProgressFunc func(written int64)
