package entity

import "time"

// Tipos de documento tal como se guardan en la columna documents.type.
const (
	DocumentTypePDF   = "PDF"
	DocumentTypeImage = "IMAGE"
)

// Document archivo adjunto a una factura. StorageKey es la clave del objeto en S3.
type Document struct {
	ID         string
	InvoiceID  string
	Type       string
	StorageKey string
	CreatedAt  time.Time
}
