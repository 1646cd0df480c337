package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/factures-api/internal/application/dto"
	"github.com/jhoicas/factures-api/internal/domain"
	"github.com/jhoicas/factures-api/internal/domain/entity"
	"github.com/jhoicas/factures-api/internal/domain/repository"
)

// InvoiceUseCase alta, edición, borrado y consulta de facturas de proveedor.
type InvoiceUseCase struct {
	txRunner     InvoiceTxRunner
	invoiceRepo  repository.InvoiceRepository
	documentRepo repository.DocumentRepository
	now          func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner InvoiceTxRunner, invoiceRepo repository.InvoiceRepository, documentRepo repository.DocumentRepository) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		documentRepo: documentRepo,
		now:          time.Now,
	}
}

// List página de facturas (created_at DESC) con proveedor y documentos.
func (uc *InvoiceUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.Normalize()
	total, err := uc.invoiceRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	list, err := uc.invoiceRepo.List(ctx, page.PageSize, page.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]*dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, toInvoiceResponse(inv))
	}
	return &dto.InvoiceListResponse{Page: page.Page, PageSize: page.PageSize, Total: total, Items: items}, nil
}

// NextNumber próximo número del año en curso (informativo: el definitivo se asigna al crear).
func (uc *InvoiceUseCase) NextNumber(ctx context.Context) (*dto.NextNumberResponse, error) {
	number, err := nextNumber(ctx, uc.invoiceRepo, uc.now().Year())
	if err != nil {
		return nil, err
	}
	return &dto.NextNumberResponse{NextNumber: number}, nil
}

// Documents documentos de una factura. ErrNotFound si la factura no existe.
func (uc *InvoiceUseCase) Documents(ctx context.Context, invoiceID string) (*dto.InvoiceDocumentsResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	docs := make([]*dto.DocumentResponse, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		docs = append(docs, &dto.DocumentResponse{ID: d.ID, Type: d.Type, URL: d.StorageKey, CreatedAt: d.CreatedAt})
	}
	return &dto.InvoiceDocumentsResponse{
		InvoiceID:      inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		DocumentsCount: len(docs),
		Documents:      docs,
	}, nil
}

// Create crea la factura con su número automático y sus documentos en una transacción.
// El proveedor se toma por id o por nombre (se crea si no existe).
// ErrConflict si otro alta concurrente tomó el mismo número.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if strings.TrimSpace(in.SupplierID) == "" && strings.TrimSpace(in.SupplierName) == "" {
		return nil, fmt.Errorf("%w: supplierId o supplierName es requerido", domain.ErrInvalidInput)
	}
	if len(in.Documents) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un documento", domain.ErrInvalidInput)
	}
	invoiceDate, err := ParseDate(in.InvoiceDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := ParseDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	structure, err := normalizeStructure(in.Structure)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:          uuid.New().String(),
		Structure:   structure,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		AmountHT:    amount(in.AmountHT),
		AmountTVA:   amount(in.AmountTVA),
		AmountTTC:   amount(in.AmountTTC),
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, d := range in.Documents {
		inv.Documents = append(inv.Documents, &entity.Document{
			ID:         uuid.New().String(),
			InvoiceID:  inv.ID,
			Type:       d.Type,
			StorageKey: d.URL,
			// Orden de creación estable dentro de la factura.
			CreatedAt: now.Add(time.Duration(i) * time.Microsecond),
		})
	}

	err = uc.txRunner.RunInvoice(ctx, func(supplierRepo repository.SupplierRepository, invoiceRepo repository.InvoiceRepository, documentRepo repository.DocumentRepository) error {
		supplier, err := resolveSupplier(ctx, supplierRepo, in.SupplierID, in.SupplierName, now)
		if err != nil {
			return err
		}
		inv.SupplierID = supplier.ID
		inv.SupplierName = supplier.Name

		inv.InvoiceNumber, err = nextNumber(ctx, invoiceRepo, now.Year())
		if err != nil {
			return err
		}
		if err := invoiceRepo.Create(ctx, inv); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("%w: número de factura %s ya asignado, reintentar", domain.ErrConflict, inv.InvoiceNumber)
			}
			return err
		}
		for _, d := range inv.Documents {
			if err := documentRepo.Create(ctx, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Update edita los campos principales; los documentos no se tocan.
func (uc *InvoiceUseCase) Update(ctx context.Context, id string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	var updated *entity.Invoice
	err := uc.txRunner.RunInvoice(ctx, func(supplierRepo repository.SupplierRepository, invoiceRepo repository.InvoiceRepository, _ repository.DocumentRepository) error {
		inv, err := invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := applyUpdate(ctx, supplierRepo, inv, in, uc.now()); err != nil {
			return err
		}
		if err := invoiceRepo.Update(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(updated), nil
}

// Delete borra primero las filas de documentos y luego la factura. Los objetos S3 se conservan.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.RunInvoice(ctx, func(_ repository.SupplierRepository, invoiceRepo repository.InvoiceRepository, documentRepo repository.DocumentRepository) error {
		inv, err := invoiceRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if err := documentRepo.DeleteByInvoice(ctx, id); err != nil {
			return err
		}
		return invoiceRepo.Delete(ctx, id)
	})
}

func applyUpdate(ctx context.Context, supplierRepo repository.SupplierRepository, inv *entity.Invoice, in dto.UpdateInvoiceRequest, now time.Time) error {
	var supplierID, supplierName string
	if in.SupplierID != nil {
		supplierID = *in.SupplierID
	}
	if in.SupplierName != nil {
		supplierName = *in.SupplierName
	}
	if strings.TrimSpace(supplierID) != "" || strings.TrimSpace(supplierName) != "" {
		supplier, err := resolveSupplier(ctx, supplierRepo, supplierID, supplierName, now)
		if err != nil {
			return err
		}
		inv.SupplierID = supplier.ID
		inv.SupplierName = supplier.Name
	}
	if in.Structure != nil {
		s, err := normalizeStructure(*in.Structure)
		if err != nil {
			return err
		}
		inv.Structure = s
	}
	if in.InvoiceDate != nil && *in.InvoiceDate != "" {
		t, err := ParseDate(*in.InvoiceDate)
		if err != nil {
			return err
		}
		inv.InvoiceDate = t
	}
	if in.DueDate != nil && *in.DueDate != "" {
		t, err := ParseDate(*in.DueDate)
		if err != nil {
			return err
		}
		inv.DueDate = t
	}
	if in.AmountHT != nil {
		inv.AmountHT = *in.AmountHT
	}
	if in.AmountTVA != nil {
		inv.AmountTVA = *in.AmountTVA
	}
	if in.AmountTTC != nil {
		inv.AmountTTC = *in.AmountTTC
	}
	if in.Status != nil {
		inv.Status = *in.Status
	}
	inv.UpdatedAt = now
	return nil
}

// resolveSupplier busca por id, o por nombre sin distinguir mayúsculas creándolo si falta.
func resolveSupplier(ctx context.Context, repo repository.SupplierRepository, id, name string, now time.Time) (*entity.Supplier, error) {
	if id = strings.TrimSpace(id); id != "" {
		s, err := repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, id)
		}
		return s, nil
	}
	name = strings.TrimSpace(name)
	s, err := repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	s = &entity.Supplier{ID: uuid.New().String(), Name: name, CreatedAt: now}
	if err := repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func nextNumber(ctx context.Context, repo repository.InvoiceRepository, year int) (string, error) {
	last, err := repo.LastNumberWithPrefix(ctx, InvoicePrefix(year))
	if err != nil {
		return "", err
	}
	return NextInvoiceNumber(last, year), nil
}

// normalizeStructure STRUCTURE_1 por defecto.
func normalizeStructure(s string) (string, error) {
	switch strings.TrimSpace(s) {
	case "":
		return entity.Structure1, nil
	case entity.Structure1, entity.Structure2:
		return strings.TrimSpace(s), nil
	default:
		return "", fmt.Errorf("%w: estructura %q", domain.ErrInvalidInput, s)
	}
}

func amount(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	docs := make([]dto.DocumentSummary, 0, len(inv.Documents))
	for _, d := range inv.Documents {
		docs = append(docs, dto.DocumentSummary{ID: d.ID, Type: d.Type})
	}
	return &dto.InvoiceResponse{
		ID:             inv.ID,
		InvoiceNumber:  inv.InvoiceNumber,
		SupplierName:   inv.SupplierName,
		Structure:      inv.Structure,
		InvoiceDate:    inv.InvoiceDate,
		DueDate:        inv.DueDate,
		AmountHT:       inv.AmountHT,
		AmountTVA:      inv.AmountTVA,
		AmountTTC:      inv.AmountTTC,
		Status:         inv.Status,
		DocumentsCount: len(docs),
		Documents:      docs,
		CreatedAt:      inv.CreatedAt,
	}
}
