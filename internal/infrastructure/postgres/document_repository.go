package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos adjuntos sobre PostgreSQL (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste el documento.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	query := `
		INSERT INTO documents (id, invoice_id, type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, d.ID, d.InvoiceID, d.Type, d.StorageKey, d.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrNotFound, d.InvoiceID)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	var d entity.Document
	err := r.q.QueryRow(ctx,
		`SELECT id, invoice_id, type, storage_key, created_at FROM documents WHERE id = $1`, id,
	).Scan(&d.ID, &d.InvoiceID, &d.Type, &d.StorageKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

// ListByInvoice en orden de creación.
func (r *DocumentRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, type, storage_key, created_at
		FROM documents WHERE invoice_id = $1
		ORDER BY created_at ASC, id ASC`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []*entity.Document
	for rows.Next() {
		var d entity.Document
		if err := rows.Scan(&d.ID, &d.InvoiceID, &d.Type, &d.StorageKey, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// DeleteByInvoice borra las filas; los objetos en S3 no se tocan.
func (r *DocumentRepo) DeleteByInvoice(ctx context.Context, invoiceID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM documents WHERE invoice_id = $1`, invoiceID); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}
