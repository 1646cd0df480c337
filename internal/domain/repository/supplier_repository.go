package repository

import (
	"context"

	"github.com/jhoicas/factures-api/internal/domain/entity"
)

// SupplierRepository puerto de persistencia para proveedores.
type SupplierRepository interface {
	List(ctx context.Context) ([]*entity.Supplier, error)
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	// FindByName busca sin distinguir mayúsculas; (nil, nil) si no existe.
	FindByName(ctx context.Context, name string) (*entity.Supplier, error)
	Create(ctx context.Context, supplier *entity.Supplier) error
}
