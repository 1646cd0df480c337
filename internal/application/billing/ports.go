package billing

import (
	"context"

	"github.com/jhoicas/factures-api/internal/domain/repository"
)

// InvoiceTxRunner ejecuta fn dentro de una transacción con los repos de facturas,
// proveedores y documentos atados a ella.
type InvoiceTxRunner interface {
	RunInvoice(ctx context.Context, fn func(
		supplierRepo repository.SupplierRepository,
		invoiceRepo repository.InvoiceRepository,
		documentRepo repository.DocumentRepository,
	) error) error
}
