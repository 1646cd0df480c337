package usecase

import (
	"context"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/domain/repository"
)

// SupplierUseCase consulta de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// List todos los proveedores ordenados por nombre.
func (uc *SupplierUseCase) List(ctx context.Context) (*dto.SupplierListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]*dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, &dto.SupplierResponse{ID: s.ID, Name: s.Name})
	}
	return &dto.SupplierListResponse{Items: items}, nil
}
