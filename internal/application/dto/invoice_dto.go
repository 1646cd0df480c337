package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentInput documento ya subido a S3 (URL = clave del objeto).
type DocumentInput struct {
	URL  string `json:"url" validate:"required"`
	Type string `json:"type" validate:"required,oneof=PDF IMAGE"`
}

// CreateInvoiceRequest alta de factura. El proveedor se indica por id o por nombre
// (se crea si no existe). Fechas en formato YYYY-MM-DD o RFC3339.
type CreateInvoiceRequest struct {
	SupplierID   string           `json:"supplierId"`
	SupplierName string           `json:"supplierName"`
	Structure    string           `json:"structure"`
	InvoiceDate  string           `json:"invoiceDate" validate:"required"`
	DueDate      string           `json:"dueDate" validate:"required"`
	AmountHT     *decimal.Decimal `json:"amountHT" validate:"required"`
	AmountTVA    *decimal.Decimal `json:"amountTVA" validate:"required"`
	AmountTTC    *decimal.Decimal `json:"amountTTC" validate:"required"`
	Status       string           `json:"status" validate:"required,oneof=PAID PENDING OVERDUE"`
	Documents    []DocumentInput  `json:"documents" validate:"required,min=1,dive"`
}

// UpdateInvoiceRequest edición parcial de los campos principales (sin documentos).
type UpdateInvoiceRequest struct {
	SupplierID   *string          `json:"supplierId"`
	SupplierName *string          `json:"supplierName"`
	Structure    *string          `json:"structure"`
	InvoiceDate  *string          `json:"invoiceDate"`
	DueDate      *string          `json:"dueDate"`
	AmountHT     *decimal.Decimal `json:"amountHT"`
	AmountTVA    *decimal.Decimal `json:"amountTVA"`
	AmountTTC    *decimal.Decimal `json:"amountTTC"`
	Status       *string          `json:"status" validate:"omitempty,oneof=PAID PENDING OVERDUE"`
}

// DocumentSummary documento en los listados.
type DocumentSummary struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID             string            `json:"id"`
	InvoiceNumber  string            `json:"invoiceNumber"`
	SupplierName   string            `json:"supplierName"`
	Structure      string            `json:"structure"`
	InvoiceDate    time.Time         `json:"invoiceDate"`
	DueDate        time.Time         `json:"dueDate"`
	AmountHT       decimal.Decimal   `json:"amountHT"`
	AmountTVA      decimal.Decimal   `json:"amountTVA"`
	AmountTTC      decimal.Decimal   `json:"amountTTC"`
	Status         string            `json:"status"`
	DocumentsCount int               `json:"documentsCount"`
	Documents      []DocumentSummary `json:"documents"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// InvoiceListResponse página de facturas.
type InvoiceListResponse struct {
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int                `json:"total"`
	Items    []*InvoiceResponse `json:"items"`
}

// NextNumberResponse próximo número de factura.
type NextNumberResponse struct {
	NextNumber string `json:"nextNumber"`
}

// DocumentResponse documento completo.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// InvoiceDocumentsResponse documentos de una factura.
type InvoiceDocumentsResponse struct {
	InvoiceID      string              `json:"invoiceId"`
	InvoiceNumber  string              `json:"invoiceNumber"`
	DocumentsCount int                 `json:"documentsCount"`
	Documents      []*DocumentResponse `json:"documents"`
}
