package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura de proveedor.
const (
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusPending = "PENDING"
	InvoiceStatusOverdue = "OVERDUE"
)

// Códigos de estructura (entidad del grupo que recibe la factura).
const (
	Structure1 = "STRUCTURE_1"
	Structure2 = "STRUCTURE_2"
)

// Invoice representa la cabecera de una factura de proveedor.
type Invoice struct {
	ID            string
	InvoiceNumber string // JEL-YY-NNN
	SupplierID    string
	SupplierName  string // rellenado en lecturas con JOIN
	Structure     string
	InvoiceDate   time.Time
	DueDate       time.Time
	AmountHT      decimal.Decimal
	AmountTVA     decimal.Decimal
	AmountTTC     decimal.Decimal
	Status        string
	Documents     []*Document
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MonthInvoice proyección de lectura usada por la exportación mensual:
// factura con proveedor y documentos en orden de creación.
type MonthInvoice struct {
	InvoiceID     string
	InvoiceNumber string
	SupplierName  string
	Structure     string
	InvoiceDate   time.Time
	Documents     []*Document
}
