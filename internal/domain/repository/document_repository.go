package repository

import (
	"context"

	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// DocumentRepository puerto de persistencia para documentos adjuntos.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.Document, error)
	DeleteByInvoice(ctx context.Context, invoiceID string) error
}
