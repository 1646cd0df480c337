package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceSelect = `
	SELECT i.id, i.invoice_number, i.supplier_id, s.name, i.structure, i.invoice_date, i.due_date,
	       i.amount_ht, i.amount_tva, i.amount_ttc, i.status, i.created_at, i.updated_at
	FROM invoices i
	JOIN suppliers s ON s.id = i.supplier_id`

// Create persiste la cabecera de la factura. ErrDuplicate si el número ya existe.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, invoice_number, supplier_id, structure, invoice_date, due_date,
		                      amount_ht, amount_tva, amount_ttc, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.SupplierID, inv.Structure, inv.InvoiceDate, inv.DueDate,
		inv.AmountHT, inv.AmountTVA, inv.AmountTTC, inv.Status, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update actualiza los campos principales (no el número ni los documentos).
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET supplier_id  = $2,
		    structure    = $3,
		    invoice_date = $4,
		    due_date     = $5,
		    amount_ht    = $6,
		    amount_tva   = $7,
		    amount_ttc   = $8,
		    status       = $9,
		    updated_at   = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.SupplierID, inv.Structure, inv.InvoiceDate, inv.DueDate,
		inv.AmountHT, inv.AmountTVA, inv.AmountTTC, inv.Status, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la cabecera. Los documentos deben borrarse antes (FK).
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: la factura todavía tiene documentos", domain.ErrConflict)
		}
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID factura con proveedor y documentos; (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	inv, err := scanInvoice(r.q.QueryRow(ctx, invoiceSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if err := r.attachDocuments(ctx, []*entity.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

// List página de facturas más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, limit, offset int) ([]*entity.Invoice, error) {
	rows, err := r.q.Query(ctx, invoiceSelect+` ORDER BY i.created_at DESC, i.id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		out = append(out, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if err := r.attachDocuments(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count total de facturas.
func (r *InvoiceRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// LastNumberWithPrefix mayor número con el prefijo; "" si no hay ninguno.
// Se ordena primero por longitud para que JEL-26-1000 quede por encima de JEL-26-999.
func (r *InvoiceRepo) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var last string
	err := r.q.QueryRow(ctx, `
		SELECT invoice_number FROM invoices
		WHERE starts_with(invoice_number, $1)
		ORDER BY length(invoice_number) DESC, invoice_number DESC
		LIMIT 1`, prefix).Scan(&last)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last invoice number: %w", err)
	}
	return last, nil
}

// ListForMonth facturas con invoice_date en [start, end), por fecha, con sus documentos
// en orden de creación. Las facturas sin documentos se incluyen con Documents vacío.
func (r *InvoiceRepo) ListForMonth(ctx context.Context, start, end time.Time) ([]*entity.MonthInvoice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.invoice_number, s.name, i.structure, i.invoice_date,
		       d.id, d.type, d.storage_key, d.created_at
		FROM invoices i
		JOIN suppliers s ON s.id = i.supplier_id
		LEFT JOIN documents d ON d.invoice_id = i.id
		WHERE i.invoice_date >= $1 AND i.invoice_date < $2
		ORDER BY i.invoice_date ASC, i.created_at ASC, i.id ASC, d.created_at ASC, d.id ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("list invoices for month: %w", err)
	}
	defer rows.Close()

	var out []*entity.MonthInvoice
	var current *entity.MonthInvoice
	for rows.Next() {
		var (
			mi         entity.MonthInvoice
			docID      *string
			docType    *string
			storageKey *string
			docCreated *time.Time
		)
		if err := rows.Scan(&mi.InvoiceID, &mi.InvoiceNumber, &mi.SupplierName, &mi.Structure, &mi.InvoiceDate,
			&docID, &docType, &storageKey, &docCreated); err != nil {
			return nil, fmt.Errorf("scan month invoice: %w", err)
		}
		if current == nil || current.InvoiceID != mi.InvoiceID {
			current = &mi
			out = append(out, current)
		}
		if docID != nil {
			current.Documents = append(current.Documents, &entity.Document{
				ID:         *docID,
				InvoiceID:  current.InvoiceID,
				Type:       deref(docType),
				StorageKey: deref(storageKey),
				CreatedAt:  derefTime(docCreated),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoices for month: %w", err)
	}
	return out, nil
}

// attachDocuments carga los documentos de varias facturas en una sola consulta.
func (r *InvoiceRepo) attachDocuments(ctx context.Context, invoices []*entity.Invoice) error {
	if len(invoices) == 0 {
		return nil
	}
	ids := make([]string, 0, len(invoices))
	byID := make(map[string]*entity.Invoice, len(invoices))
	for _, inv := range invoices {
		ids = append(ids, inv.ID)
		byID[inv.ID] = inv
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, type, storage_key, created_at
		FROM documents WHERE invoice_id = ANY($1::text[]::uuid[])
		ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("list invoice documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Type, &d.StorageKey, &d.CreatedAt); err != nil {
			return fmt.Errorf("scan document: %w", err)
		}
		if inv := byID[d.InvoiceID]; inv != nil {
			inv.Documents = append(inv.Documents, &d)
		}
	}
	return rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.SupplierID, &inv.SupplierName, &inv.Structure,
		&inv.InvoiceDate, &inv.DueDate, &inv.AmountHT, &inv.AmountTVA, &inv.AmountTTC,
		&inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
